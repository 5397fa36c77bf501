package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	access, err := p.IssueAccess("s1", "u1", "astronomer")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access.Token == "" || access.JTI == "" {
		t.Fatal("access token or jti empty")
	}
	if access.ExpiresAt.Before(time.Now()) {
		t.Fatal("access expires in the past")
	}

	claims, err := p.ValidateAccess(access.Token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.SessionID != "s1" || claims.UserID != "u1" || claims.Role != "astronomer" || claims.JTI != access.JTI {
		t.Errorf("ValidateAccess = %+v", claims)
	}

	refresh, err := p.IssueRefresh("s1", "u1", "astronomer")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	rc, err := p.ValidateRefresh(refresh.Token)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if rc.JTI != refresh.JTI || rc.SessionID != "s1" {
		t.Errorf("ValidateRefresh = %+v", rc)
	}
	if !refresh.ExpiresAt.After(access.ExpiresAt) {
		t.Error("refresh should outlive access")
	}
}

func TestTokenProvider_RejectsWrongUse(t *testing.T) {
	p, _ := NewTestTokenProvider()
	access, _ := p.IssueAccess("s1", "u1", "astronomer")
	refresh, _ := p.IssueRefresh("s1", "u1", "astronomer")

	if _, err := p.ValidateRefresh(access.Token); err != ErrInvalidToken {
		t.Errorf("ValidateRefresh(access) = %v, want ErrInvalidToken", err)
	}
	if _, err := p.ValidateAccess(refresh.Token); err != ErrInvalidToken {
		t.Errorf("ValidateAccess(refresh) = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_RejectsForeignIssuerAndAudience(t *testing.T) {
	p, _ := NewTestTokenProvider()
	signer, pub, _ := testKeys()

	otherIssuer := NewTokenProvider(signer, pub, "someone-else", TestAudience, time.Minute, time.Hour)
	tok, _ := otherIssuer.IssueAccess("s", "u", "astronomer")
	if _, err := p.ValidateAccess(tok.Token); err != ErrInvalidToken {
		t.Errorf("foreign issuer: got %v, want ErrInvalidToken", err)
	}

	otherAud := NewTokenProvider(signer, pub, TestIssuer, "other-api", time.Minute, time.Hour)
	tok, _ = otherAud.IssueAccess("s", "u", "astronomer")
	if _, err := p.ValidateAccess(tok.Token); err != ErrInvalidToken {
		t.Errorf("foreign audience: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	signer, pub, _ := testKeys()
	p := NewTokenProvider(signer, pub, TestIssuer, TestAudience, -time.Minute, time.Hour)
	tok, err := p.IssueAccess("s", "u", "astronomer")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(tok.Token); err != ErrInvalidToken {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_EphemeralES256(t *testing.T) {
	signer, pub, err := GenerateEphemeralKey()
	if err != nil {
		t.Fatalf("GenerateEphemeralKey: %v", err)
	}
	p := NewTokenProvider(signer, pub, "iss", "aud", time.Minute, time.Hour)
	tok, err := p.IssueAccess("s", "u", "administrator")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(tok.Token); err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if _, err := p.ValidateAccess("invalid-token"); err != ErrInvalidToken {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}
}
