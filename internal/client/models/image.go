package models

// Image is a staged profile image payload.
type Image struct {
	Filename string
	Data     []byte
}

// Empty reports whether there is nothing to upload.
func (i *Image) Empty() bool {
	return i == nil || len(i.Data) == 0
}
