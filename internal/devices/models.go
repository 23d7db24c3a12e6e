package devices

import "time"

// Device is a single logged-in session bound to a physical device.
type Device struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"-"`
	SessionToken string    `json:"-"`
	DeviceName   string    `json:"device_name"`
	OS           string    `json:"os"`
	Browser      string    `json:"browser"`
	IPAddress    string    `json:"ip_address,omitempty"`
	LoginTime    time.Time `json:"login_time"`
	LastActivity time.Time `json:"last_activity"`
	IsActive     bool      `json:"is_active"`
	Current      bool      `json:"current"`
}

// Info carries the client metadata captured at login time.
type Info struct {
	DeviceName string
	OS         string
	Browser    string
	IPAddress  string
}
