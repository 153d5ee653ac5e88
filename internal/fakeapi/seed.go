package fakeapi

import (
	"time"

	"unibuild/internal/backend"
)

// Demo accounts created by Seed. They all share DemoPassword.
const (
	DemoPassword  = "unibuild-demo"
	DemoCitizen   = "citizen@unibuild.test"
	DemoArchitect = "architect@unibuild.test"
	DemoEngineer  = "engineer@unibuild.test"
)

// Seed adds one account per role and a few records for each.
func (s *Server) Seed() {
	now := s.now()
	day := 24 * time.Hour

	citizen := s.AddAccount("Amina Citizen", DemoCitizen, DemoPassword, "USER")
	s.AddLandVerification(citizen.ID, backend.LandVerification{
		Type: "forensic_search", ParcelID: "P-1042", ParcelNumber: "1042", Town: "Hargeisa", BlockNumber: "7",
		Status: "pending", CreatedAt: now.Add(-2 * day),
	})
	s.AddLandVerification(citizen.ID, backend.LandVerification{
		Type: "lpc", ParcelID: "P-0311", ParcelNumber: "311", Town: "Berbera",
		Status: "approved", CertificateID: "LPC-2026-0311", CreatedAt: now.Add(-9 * day),
	})
	s.AddLandVerification(citizen.ID, backend.LandVerification{
		Type: "forensic_search", ParcelID: "P-0777", Town: "Burao",
		Status: "rejected", RejectionReason: "Parcel boundaries disputed", CreatedAt: now.Add(-20 * day),
	})

	architect := s.AddAccount("Bashir Architect", DemoArchitect, DemoPassword, "ARCHITECT")
	s.SetProfessionalProfile(architect.ID, &backend.ProfessionalProfile{
		ProfessionType: "Architect", YearsOfExperience: 8, LicenseNumber: "ARC-5521",
		Status: "approved", CreatedAt: now.Add(-60 * day), UpdatedAt: now.Add(-30 * day),
	})
	passed := s.AddDesignSubmission(architect.ID, backend.DesignSubmission{
		ProjectName: "Harbour View Offices", Location: "Berbera", ProjectValue: 1250000,
		ComplianceStatus: "passed", CreatedAt: now.Add(-14 * day),
	})
	s.AddDesignSubmission(architect.ID, backend.DesignSubmission{
		ProjectName: "Market Hall", Location: "Hargeisa", ProjectValue: 420000,
		ComplianceStatus: "pending", CreatedAt: now.Add(-3 * day),
	})
	s.AddPermitRequest(architect.ID, backend.PermitRequest{
		DesignSubmissionID: passed.ID, Status: "pending_government_approval", FeeAmount: 6250,
		ProjectName: passed.ProjectName, Location: passed.Location, CreatedAt: now.Add(-10 * day),
	})

	// The engineer has not submitted a profile yet.
	s.AddAccount("Caamir Engineer", DemoEngineer, DemoPassword, "ENGINEER")
}
