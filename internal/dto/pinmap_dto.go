package dto

type PinmapRequest struct {
	Items []map[string]interface{} `json:"items" validate:"required,min=1"`
}
