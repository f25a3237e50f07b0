package model

import "time"

func init() {
	RegisterKind(KindUser, func() Record { return &User{} })
	RegisterKind(KindWallet, func() Record { return &Wallet{} })
}

// User is a marketplace account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"` // active|suspended
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Kind() string          { return KindUser }
func (u *User) RecordID() string      { return u.ID }
func (u *User) SetRecordID(id string) { u.ID = id }

// Wallet holds a user's marketplace credits.
type Wallet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Balance   int64     `json:"balance"`
	Reserved  int64     `json:"reserved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Wallet) Kind() string          { return KindWallet }
func (w *Wallet) RecordID() string      { return w.ID }
func (w *Wallet) SetRecordID(id string) { w.ID = id }
