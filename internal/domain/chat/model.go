package chat

import "time"

// Role de un mensaje; coincide con los roles del modelo generativo.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	ID        string
	UserID    string
	Role      Role
	Text      string
	CreatedAt time.Time
}

// Reply es lo que ve el cliente.
type Reply struct {
	Text string `json:"text"`
	Role Role   `json:"role"`
}
