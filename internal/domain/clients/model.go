package clients

import "time"

type Client struct {
	ID        int64
	Name      string
	Contact   string
	Phone     string
	Address   string
	Active    bool
	CreatedAt time.Time
}
