package models

import "time"

// MailSettings is the admin-managed outbound SMTP account. A single document keyed by Key.
type MailSettings struct {
	Key         string    `bson:"key" json:"-"`
	Host        string    `bson:"host" json:"host"`
	Port        int       `bson:"port" json:"port"`
	Username    string    `bson:"username" json:"username"`
	Password    string    `bson:"password" json:"-"` // AES-GCM encrypted at rest
	SenderEmail string    `bson:"senderEmail" json:"senderEmail"`
	SenderName  string    `bson:"senderName" json:"senderName"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
