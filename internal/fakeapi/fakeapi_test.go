package fakeapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unibuild/internal/backend"
	dErrors "unibuild/pkg/domain-errors"
)

// ContractSuite drives the fake through the portal's real backend client so
// both sides agree on paths, envelopes and error statuses.
type ContractSuite struct {
	suite.Suite
	api    *Server
	server *httptest.Server
	client *backend.Client
	now    time.Time
}

func TestContractSuite(t *testing.T) {
	suite.Run(t, new(ContractSuite))
}

func (s *ContractSuite) SetupTest() {
	s.now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.api = New(WithSecret([]byte("test-secret")), WithClock(func() time.Time { return s.now }))
	s.api.Seed()
	s.server = httptest.NewServer(s.api.Routes())
	s.client = backend.New(s.server.URL)
}

func (s *ContractSuite) TearDownTest() {
	s.server.Close()
}

func (s *ContractSuite) login(email string) backend.AuthResult {
	res, err := s.client.Login(context.Background(), email, DemoPassword)
	s.Require().NoError(err)
	s.Require().NotEmpty(res.Token)
	s.Require().NotNil(res.User)
	return res
}

func (s *ContractSuite) TestLogin() {
	ctx := context.Background()

	s.Run("valid credentials return token and user", func() {
		res := s.login(DemoCitizen)
		s.Equal(DemoCitizen, res.User.Email)
		s.Equal([]string{"USER"}, res.User.Roles)
	})

	s.Run("email is case insensitive", func() {
		_, err := s.client.Login(ctx, "Citizen@UniBuild.test", DemoPassword)
		s.NoError(err)
	})

	s.Run("wrong password is unauthorized with the API message", func() {
		_, err := s.client.Login(ctx, DemoCitizen, "nope")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		de, _ := dErrors.As(err)
		s.Equal(msgInvalidCredentials, de.Message)
	})
}

func (s *ContractSuite) TestRegister() {
	ctx := context.Background()
	req := backend.RegisterRequest{
		Name: "New Engineer", Email: "new@unibuild.test", Phone: "+252 63 000",
		Password: "pw", Role: "ENGINEER", TermsAccepted: true,
	}

	s.Run("creates the account", func() {
		res, err := s.client.Register(ctx, req)
		s.Require().NoError(err)
		s.Equal([]string{"ENGINEER"}, res.User.Roles)

		me, err := s.client.Me(ctx, res.Token)
		s.Require().NoError(err)
		s.Equal(res.User.ID, me.ID)
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.client.Register(ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("terms must be accepted", func() {
		r := req
		r.Email, r.TermsAccepted = "other@unibuild.test", false
		_, err := s.client.Register(ctx, r)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown role is rejected", func() {
		r := req
		r.Email, r.Role = "admin@unibuild.test", "ADMIN"
		_, err := s.client.Register(ctx, r)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ContractSuite) TestMe() {
	ctx := context.Background()
	res := s.login(DemoArchitect)

	s.Run("reports role changes on an existing token", func() {
		s.Require().NoError(s.api.SetRoles(DemoArchitect, "ENGINEER"))
		me, err := s.client.Me(ctx, res.Token)
		s.Require().NoError(err)
		s.Equal([]string{"ENGINEER"}, me.Roles)
	})

	s.Run("expired token is unauthorized", func() {
		s.now = s.now.Add(DefaultTokenTTL + time.Minute)
		_, err := s.client.Me(ctx, res.Token)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("foreign signature is unauthorized", func() {
		other := New(WithSecret([]byte("other")), WithClock(func() time.Time { return s.now }))
		u := other.AddAccount("x", "x@x", "pw")
		token, err := other.issueToken(u.ID)
		s.Require().NoError(err)
		_, err = s.client.Me(ctx, token)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown account is unauthorized", func() {
		_, err := s.client.Me(ctx, "not-a-jwt")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ContractSuite) TestLandVerifications() {
	ctx := context.Background()
	token := s.login(DemoCitizen).Token

	s.Run("newest first with paging", func() {
		page, err := s.client.LandVerifications(ctx, token, backend.LandVerificationQuery{Page: 1, Limit: 2})
		s.Require().NoError(err)
		s.Equal(3, page.Total)
		s.Equal(2, page.TotalPages)
		s.Require().Len(page.Verifications, 2)
		s.Equal("P-1042", page.Verifications[0].ParcelID)

		page, err = s.client.LandVerifications(ctx, token, backend.LandVerificationQuery{Page: 2, Limit: 2})
		s.Require().NoError(err)
		s.Require().Len(page.Verifications, 1)
		s.Equal("P-0777", page.Verifications[0].ParcelID)
	})

	s.Run("filters by status", func() {
		page, err := s.client.LandVerifications(ctx, token, backend.LandVerificationQuery{Status: "approved"})
		s.Require().NoError(err)
		s.Require().Len(page.Verifications, 1)
		s.Equal("LPC-2026-0311", page.Verifications[0].CertificateID)
	})

	s.Run("single record and not found", func() {
		page, err := s.client.LandVerifications(ctx, token, backend.LandVerificationQuery{})
		s.Require().NoError(err)
		v, err := s.client.LandVerification(ctx, token, page.Verifications[0].ID)
		s.Require().NoError(err)
		s.Equal(page.Verifications[0].ParcelID, v.ParcelID)

		_, err = s.client.LandVerification(ctx, token, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("records are per user", func() {
		other := s.login(DemoEngineer).Token
		page, err := s.client.LandVerifications(ctx, other, backend.LandVerificationQuery{})
		s.Require().NoError(err)
		s.Empty(page.Verifications)
	})
}

func (s *ContractSuite) TestProfessionalRecords() {
	ctx := context.Background()

	s.Run("architect has profile designs and permits", func() {
		token := s.login(DemoArchitect).Token
		p, err := s.client.ProfessionalProfile(ctx, token)
		s.Require().NoError(err)
		s.Require().NotNil(p)
		s.Equal("approved", p.Status)

		designs, err := s.client.DesignSubmissions(ctx, token, 1)
		s.Require().NoError(err)
		s.Len(designs, 1)

		permits, err := s.client.PermitRequests(ctx, token, 50)
		s.Require().NoError(err)
		s.Require().Len(permits, 1)
		s.Equal("pending_government_approval", permits[0].Status)
	})

	s.Run("engineer without a profile gets nil", func() {
		token := s.login(DemoEngineer).Token
		p, err := s.client.ProfessionalProfile(ctx, token)
		s.Require().NoError(err)
		s.Nil(p)
	})
}

func (s *ContractSuite) TestRequestLandVerification() {
	ctx := context.Background()
	token := s.login(DemoCitizen).Token

	s.Run("creates a pending request of each kind", func() {
		for _, kind := range []string{backend.RequestForensicSearch, backend.RequestLPC} {
			v, err := s.client.RequestLandVerification(ctx, token, kind, "P-2001")
			s.Require().NoError(err)
			s.Equal(kind, v.Type)
			s.Equal("pending", v.Status)
			s.True(v.CreatedAt.Equal(s.now))

			got, err := s.client.LandVerification(ctx, token, v.ID)
			s.Require().NoError(err)
			s.Equal("P-2001", got.ParcelID)
		}
		page, err := s.client.LandVerifications(ctx, token, backend.LandVerificationQuery{})
		s.Require().NoError(err)
		s.Equal(5, page.Total)
	})

	s.Run("blank parcel is rejected", func() {
		_, err := s.client.RequestLandVerification(ctx, token, backend.RequestLPC, "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		de, _ := dErrors.As(err)
		s.Equal(msgParcelRequired, de.Message)
	})

	s.Run("requires a token", func() {
		_, err := s.client.RequestLandVerification(ctx, "", backend.RequestLPC, "P-2001")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ContractSuite) TestSubmitRegistration() {
	ctx := context.Background()
	token := s.login(DemoEngineer).Token
	payload := backend.RegistrationPayload{
		PersonalInfo: backend.RegistrationPersonalInfo{
			FirstName: "Eng", Nationality: "Somali", PlaceOfBirth: "Hargeisa", DateOfBirth: "1990-01-01",
			MailingAddress: "PO Box 1", Email: DemoEngineer, Telephone: "+252 63 111",
		},
		Category: backend.RegistrationCategory{Profession: "Civil Engineer", Level: "Professional"},
	}

	s.Run("incomplete payload is rejected", func() {
		bad := payload
		bad.Category.Level = "Grandmaster"
		_, err := s.client.SubmitRegistration(ctx, token, bad)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("first submission opens a pending profile", func() {
		reg, err := s.client.SubmitRegistration(ctx, token, payload)
		s.Require().NoError(err)
		s.NotEmpty(reg.ID)
		s.Equal("pending", reg.Status)

		p, err := s.client.ProfessionalProfile(ctx, token)
		s.Require().NoError(err)
		s.Require().NotNil(p)
		s.Equal("pending", p.Status)
		s.Equal("Civil Engineer", p.ProfessionType)
	})

	s.Run("second submission conflicts", func() {
		_, err := s.client.SubmitRegistration(ctx, token, payload)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		de, _ := dErrors.As(err)
		s.Equal(msgRegistrationExists, de.Message)
	})

	s.Run("existing profile is left alone", func() {
		architect := s.login(DemoArchitect).Token
		_, err := s.client.SubmitRegistration(ctx, architect, payload)
		s.Require().NoError(err)
		p, err := s.client.ProfessionalProfile(ctx, architect)
		s.Require().NoError(err)
		s.Equal("approved", p.Status)
	})
}
