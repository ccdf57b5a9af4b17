package contact

import (
	"fmt"
	"strings"
)

const Subject = "New Contact Form Entry"

type Message struct {
	Name    string `json:"name" binding:"required,max=250"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required,max=50"`
	Message string `json:"message" binding:"required,max=5000"`
}

// Body renders the fixed plain-text template sent to the blog owner.
func (m Message) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", m.Name)
	fmt.Fprintf(&b, "Email: %s\n", m.Email)
	fmt.Fprintf(&b, "Phone: %s\n", m.Phone)
	fmt.Fprintf(&b, "Message: %s", m.Message)
	return b.String()
}
