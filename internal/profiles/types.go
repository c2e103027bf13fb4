package profiles

// Client is the read-side view of a client profile used by the relay.
type Client struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
}
