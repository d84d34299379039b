package chat

import "github.com/wiktoriatopajew/pipa/internal/models"

type CreateSessionInput struct {
	// VehicleInfo is an opaque blob describing the vehicle (type, make,
	// model, issue). Stored as-is and echoed back to the chat surfaces.
	VehicleInfo models.JSON `json:"vehicle_info"`
}

type SendMessageInput struct {
	Content string `json:"content" binding:"required"`
}
