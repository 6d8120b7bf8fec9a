package image

// Reply is the engine's answer to an index or remove call, relayed to the caller unchanged.
type Reply struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
