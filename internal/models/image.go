package models

// ImageUpload is returned after a product image is stored.
type ImageUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
