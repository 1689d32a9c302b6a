package publish

import "fmt"

// UnsupportedPayloadError reports a file whose payload variant the decider
// cannot publish (streaming content).
type UnsupportedPayloadError struct {
	Key string
}

func (e *UnsupportedPayloadError) Error() string {
	return fmt.Sprintf("%s: streaming payloads are not supported, buffer the content first", e.Key)
}

// RemoteQueryError reports a metadata query that failed for a reason other
// than the object being absent.
type RemoteQueryError struct {
	Key string
	Err error
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("querying remote state for %s: %s", e.Key, e.Err)
}

func (e *RemoteQueryError) Unwrap() error { return e.Err }

// RemoteWriteError reports a failed upload.
type RemoteWriteError struct {
	Key string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("uploading %s: %s", e.Key, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }
