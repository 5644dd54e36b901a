package dispatch

func (d *Dispatcher) Get(url string, onSuccess SuccessFunc, onError ErrorFunc) error {
	return d.Dispatch("GET", url, onSuccess, onError, nil)
}

func (d *Dispatcher) Post(url string, onSuccess SuccessFunc, onError ErrorFunc, data any) error {
	return d.Dispatch("POST", url, onSuccess, onError, data)
}

func (d *Dispatcher) Put(url string, onSuccess SuccessFunc, onError ErrorFunc, data any) error {
	return d.Dispatch("PUT", url, onSuccess, onError, data)
}

func (d *Dispatcher) Patch(url string, onSuccess SuccessFunc, onError ErrorFunc, data any) error {
	return d.Dispatch("PATCH", url, onSuccess, onError, data)
}

// Del sends a DELETE request, it takes no payload.
func (d *Dispatcher) Del(url string, onSuccess SuccessFunc, onError ErrorFunc) error {
	return d.Dispatch("DELETE", url, onSuccess, onError, nil)
}
