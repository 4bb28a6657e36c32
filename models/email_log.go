package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Email kinds recorded in the email log.
const (
	EmailKindReservationApproved = "reservation_approved"
	EmailKindReservationRejected = "reservation_rejected"
	EmailKindPasswordReset       = "password_reset"
)

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog records one outbound notification attempt.
type EmailLog struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind          string             `bson:"kind" json:"kind"`
	ToEmail       string             `bson:"toEmail" json:"toEmail"`
	Subject       string             `bson:"subject" json:"subject"`
	UserID        string             `bson:"userId,omitempty" json:"userId,omitempty"`
	ReservationID string             `bson:"reservationId,omitempty" json:"reservationId,omitempty"`
	Status        string             `bson:"status" json:"status"`
	Error         string             `bson:"error,omitempty" json:"error,omitempty"`
	SentAt        time.Time          `bson:"sentAt" json:"sentAt"`
}
