package dto

import "lms/internal/service"

type IdentityVerificationRequest struct {
	Name                  string `json:"name" validate:"required,max=30"`
	ResidentNumber        string `json:"residentNumber" validate:"required"`
	PhoneNumber           string `json:"phoneNumber" validate:"required"`
	Carrier               string `json:"carrier" validate:"required"`
	PrivacyAgreement      bool   `json:"privacyAgreement"`
	UniqueIDAgreement     bool   `json:"uniqueIdAgreement"`
	VerificationAgreement bool   `json:"verificationAgreement"`
}

func (r IdentityVerificationRequest) Input() service.IdentityVerificationInput {
	return service.IdentityVerificationInput{
		Name:                  r.Name,
		ResidentNumber:        r.ResidentNumber,
		PhoneNumber:           r.PhoneNumber,
		Carrier:               r.Carrier,
		PrivacyAgreement:      r.PrivacyAgreement,
		UniqueIDAgreement:     r.UniqueIDAgreement,
		VerificationAgreement: r.VerificationAgreement,
	}
}

type RegistrationBaseRequest struct {
	VerificationToken  string `json:"verificationToken" validate:"required"`
	Username           string `json:"username" validate:"required,alphanum,min=4,max=20"`
	Password           string `json:"password" validate:"required,password"`
	PasswordConfirm    string `json:"passwordConfirm" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	PhoneNumber        string `json:"phoneNumber" validate:"required,phone"`
	PrivacyAgreement   bool   `json:"privacyAgreement"`
	TermsAgreement     bool   `json:"termsAgreement"`
	MarketingAgreement bool   `json:"marketingAgreement"`
}

func (r RegistrationBaseRequest) base() service.RegistrationBase {
	return service.RegistrationBase{
		VerificationToken:  r.VerificationToken,
		Username:           r.Username,
		Password:           r.Password,
		PasswordConfirm:    r.PasswordConfirm,
		Email:              r.Email,
		PhoneNumber:        r.PhoneNumber,
		PrivacyAgreement:   r.PrivacyAgreement,
		TermsAgreement:     r.TermsAgreement,
		MarketingAgreement: r.MarketingAgreement,
	}
}

type EmployeeRegistrationRequest struct {
	RegistrationBaseRequest
	CompanyName           string `json:"companyName" validate:"required,min=2,max=100"`
	BusinessNumber        string `json:"businessNumber" validate:"required"`
	Department            string `json:"department" validate:"required,min=2,max=50"`
	Position              string `json:"position" validate:"required,min=2,max=30"`
	CompanyEmail          string `json:"companyEmail" validate:"omitempty,email"`
	SupervisorName        string `json:"supervisorName" validate:"omitempty,max=30"`
	SupervisorEmail       string `json:"supervisorEmail"`
	EmploymentCertificate string `json:"employmentCertificate"`
}

func (r EmployeeRegistrationRequest) Input() service.EmployeeRegistrationInput {
	return service.EmployeeRegistrationInput{
		RegistrationBase:      r.base(),
		CompanyName:           r.CompanyName,
		BusinessNumber:        r.BusinessNumber,
		Department:            r.Department,
		Position:              r.Position,
		CompanyEmail:          r.CompanyEmail,
		SupervisorName:        r.SupervisorName,
		SupervisorEmail:       r.SupervisorEmail,
		EmploymentCertificate: r.EmploymentCertificate,
	}
}

type JobSeekerRegistrationRequest struct {
	RegistrationBaseRequest
	Education         string `json:"education" validate:"required"`
	SchoolName        string `json:"schoolName" validate:"max=100"`
	Major             string `json:"major" validate:"max=50"`
	CareerLevel       string `json:"careerLevel" validate:"required"`
	TotalCareerMonths *int   `json:"totalCareerMonths"`
	DesiredField      string `json:"desiredField" validate:"required,min=2,max=50"`
	DesiredLocation   string `json:"desiredLocation" validate:"max=100"`
	PreviousCompany   string `json:"previousCompany" validate:"max=100"`
	PreviousPosition  string `json:"previousPosition" validate:"max=50"`
	Introduction      string `json:"introduction" validate:"max=500"`
	PortfolioURL      string `json:"portfolioUrl"`
	JobInfoAgreement  bool   `json:"jobInfoAgreement"`
}

func (r JobSeekerRegistrationRequest) Input() service.JobSeekerRegistrationInput {
	return service.JobSeekerRegistrationInput{
		RegistrationBase:  r.base(),
		Education:         r.Education,
		SchoolName:        r.SchoolName,
		Major:             r.Major,
		CareerLevel:       r.CareerLevel,
		TotalCareerMonths: r.TotalCareerMonths,
		DesiredField:      r.DesiredField,
		DesiredLocation:   r.DesiredLocation,
		PreviousCompany:   r.PreviousCompany,
		PreviousPosition:  r.PreviousPosition,
		Introduction:      r.Introduction,
		PortfolioURL:      r.PortfolioURL,
		JobInfoAgreement:  r.JobInfoAgreement,
	}
}
