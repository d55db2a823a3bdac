package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

// 试卷约束
const (
	MinOptionsPerQuestion       = 2
	MinDurationMinutes          = 1
	MaxDurationMinutes          = 180
	DefaultDurationMinutes      = 15
	EstimatedMinutesPerQuestion = 2
)
