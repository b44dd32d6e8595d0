package dto

// CreateAttributeRequest adds a node to the attribute tree. Parent 0 means the root.
type CreateAttributeRequest struct {
	Parent uint64 `json:"parent" example:"1"`
	Type   uint32 `json:"type" validate:"gt=1" example:"9729"`
}

type AttributeResponse struct {
	ID          uint64   `json:"id" example:"12"`
	Type        string   `json:"type" example:"0x00002601"`
	Parent      uint64   `json:"parent" example:"1"`
	ReportedSet bool     `json:"reported_set"`
	DesiredSet  bool     `json:"desired_set"`
	Children    []uint64 `json:"children"`
}
