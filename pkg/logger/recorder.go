package logger

import "net/http"

// ResponseRecorder wraps an http.ResponseWriter and remembers the status code and the
// number of body bytes written, for request logging.
type ResponseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func New(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (l *ResponseRecorder) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *ResponseRecorder) Write(b []byte) (int, error) {
	n, err := l.ResponseWriter.Write(b)
	l.bytes += n
	return n, err
}

func (l *ResponseRecorder) Status() int {
	return l.status
}

func (l *ResponseRecorder) BytesWritten() int {
	return l.bytes
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (l *ResponseRecorder) Unwrap() http.ResponseWriter {
	return l.ResponseWriter
}
