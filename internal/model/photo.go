package model

// Photo is an attachment already converted to a self-describing data URI,
// ready to be embedded in a report creation request.
type Photo struct {
	MediaType string
	DataURI   string
}
