package models

import "time"

// Validate checks if the friend mapping meets all validation requirements
func (f *KakaoFriend) Validate() error {
	return validate.Struct(f)
}

// BeforeCreate sets up any necessary fields before creation
func (f *KakaoFriend) BeforeCreate() {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
}

// Validate checks if the friend group meets all validation requirements
func (g *KakaoFriendGroup) Validate() error {
	return validate.Struct(g)
}

// BeforeCreate sets up any necessary fields before creation
func (g *KakaoFriendGroup) BeforeCreate() {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
}
