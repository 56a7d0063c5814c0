package id

import (
	"crypto/md5"
	"io"

	"github.com/gofrs/uuid"
)

// GenTraceID new normal traceID
func GenTraceID() string {
	return GenUUIDString()
}

// TraceIDFrom new traceID from text
func TraceIDFrom(text string) string {
	return UUIDFromString(text)
}

// GenUUIDString new uuid
func GenUUIDString() string {
	return uuid.Must(uuid.NewV4()).String()
}

// UUIDFromString new uuid string from string
func UUIDFromString(text string) string {
	h := md5.New()
	_, _ = io.WriteString(h, text)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}
