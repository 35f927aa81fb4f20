package service

import (
	"context"

	"lms/internal/utils"

	"github.com/sirupsen/logrus"
)

// LogNotifier records outgoing notifications instead of delivering them.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

func (n LogNotifier) SendApprovalRequest(_ context.Context, request ApprovalRequest) error {
	n.logger().WithFields(logrus.Fields{
		"supervisor_email": request.SupervisorEmail,
		"username":         request.Username,
		"company":          request.CompanyName,
	}).Info("approval request sent")
	return nil
}

func (n LogNotifier) SendWelcomeEmail(_ context.Context, email string, username string, verificationToken string) error {
	n.logger().WithFields(logrus.Fields{
		"email":      email,
		"username":   username,
		"token_hash": utils.HashToken(verificationToken),
	}).Info("welcome and verification email sent")
	return nil
}

func (n LogNotifier) logger() logrus.FieldLogger {
	if n.Logger == nil {
		return logrus.StandardLogger()
	}
	return n.Logger
}
