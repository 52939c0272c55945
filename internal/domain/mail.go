package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateStaffMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type AssignmentNoticeMailData struct {
	FullName  string   `json:"fullName"`
	Role      Role     `json:"role"`
	RoomName  string   `json:"roomName"`
	Dates     []string `json:"dates"`
	SlotCount int      `json:"slotCount"`
}

type AssignmentRemovedMailData struct {
	FullName  string   `json:"fullName"`
	RoomName  string   `json:"roomName"`
	Dates     []string `json:"dates"`
	SlotCount int      `json:"slotCount"`
}
