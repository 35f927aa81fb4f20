package service

import (
	"context"
	"strings"

	"lms/internal/entity"
	"lms/internal/utils"
)

const ProviderNice = "NICE"

type IdentityQuery struct {
	Name        string
	ResidentID  string
	PhoneNumber string
	Carrier     string
}

type IdentityRecord struct {
	Name            string
	Gender          string
	BirthDate       string
	Nationality     string
	CarrierVerified bool
	Provider        string
}

// IdentityProvider resolves a person against an external identity registry.
// A nil record with a nil error means nobody matched.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, query IdentityQuery) (*IdentityRecord, error)
}

// MockNiceProvider stands in for the NICE identity API and knows a single
// registered person.
type MockNiceProvider struct{}

const (
	mockNiceName             = "홍길동"
	mockNiceResidentIDPrefix = "901225"
)

func (MockNiceProvider) VerifyIdentity(ctx context.Context, query IdentityQuery) (*IdentityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query.Name != mockNiceName || !strings.HasPrefix(query.ResidentID, mockNiceResidentIDPrefix) {
		return nil, nil
	}
	return &IdentityRecord{
		Name:            query.Name,
		Gender:          utils.ResidentGender(query.ResidentID),
		BirthDate:       utils.ResidentBirthDate(query.ResidentID),
		Nationality:     entity.NationalityDomestic,
		CarrierVerified: true,
		Provider:        ProviderNice,
	}, nil
}
