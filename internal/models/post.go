package models

import (
	"encoding/json"
	"time"
)

// CartItem is one entry of a trade post's cart. Keys without a typed field
// are kept in Extra and written back inline.
type CartItem struct {
	ID       string         `mapstructure:"id" json:"id"`
	Name     string         `mapstructure:"name" json:"name"`
	ImageURL string         `mapstructure:"imageUrl" json:"imageUrl,omitempty"`
	Quantity int            `mapstructure:"quantity" json:"quantity"`
	Price    float64        `mapstructure:"price" json:"price"`
	Extra    map[string]any `mapstructure:",remain" json:"-"`
}

// MarshalJSON writes Extra alongside the typed fields. Typed fields win on
// key collisions.
func (ci CartItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(ci.Extra)+5)
	for k, v := range ci.Extra {
		out[k] = v
	}
	out["id"] = ci.ID
	out["name"] = ci.Name
	if ci.ImageURL != "" {
		out["imageUrl"] = ci.ImageURL
	}
	out["quantity"] = ci.Quantity
	out["price"] = ci.Price
	return json.Marshal(out)
}

// Post is the view model of a post document.
type Post struct {
	ID           string     `mapstructure:"id" json:"id"`
	Type         string     `mapstructure:"type" json:"type"`
	Title        string     `mapstructure:"title" json:"title"`
	Body         string     `mapstructure:"body" json:"body"`
	Cart         []CartItem `mapstructure:"cart" json:"cart"`
	Images       []Image    `mapstructure:"-" json:"images"`
	CreatorID    string     `mapstructure:"creatorId" json:"creatorId"`
	CreatedAt    time.Time  `mapstructure:"createdAt" json:"createdAt"`
	CommentCount int        `mapstructure:"commentCount" json:"commentCount"`
}

// Comment is the view model of a comment document.
type Comment struct {
	ID        string    `mapstructure:"id" json:"id"`
	Body      string    `mapstructure:"body" json:"body"`
	CreatorID string    `mapstructure:"creatorId" json:"creatorId"`
	CreatedAt time.Time `mapstructure:"createdAt" json:"createdAt"`
}

// Notification is the view model of a notification document.
type Notification struct {
	ID         string    `mapstructure:"id" json:"id"`
	Type       string    `mapstructure:"type" json:"type"`
	Title      string    `mapstructure:"title" json:"title"`
	Body       string    `mapstructure:"body" json:"body"`
	SenderID   string    `mapstructure:"senderId" json:"senderId"`
	ReceiverID string    `mapstructure:"receiverId" json:"receiverId"`
	CreatedAt  time.Time `mapstructure:"createdAt" json:"createdAt"`
	IsRead     bool      `mapstructure:"isRead" json:"isRead"`
}
