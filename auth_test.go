package main

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	auth := NewAuth(newTestDB(t))

	id, token, err := auth.Register("pilot", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 || token == "" {
		t.Fatal("register returned empty credentials")
	}

	// Duplicate username
	if _, _, err := auth.Register("pilot", "other"); err == nil {
		t.Error("duplicate register allowed")
	}

	loginID, loginToken, err := auth.Login("pilot", "secret", "1.2.3.4")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginID != id || loginToken == "" {
		t.Error("login returned wrong account")
	}

	if _, _, err := auth.Login("pilot", "wrong", "1.2.3.4"); err == nil {
		t.Error("wrong password accepted")
	}
	if _, _, err := auth.Login("nobody", "secret", "1.2.3.4"); err == nil {
		t.Error("unknown user accepted")
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := NewAuth(newTestDB(t))

	if _, _, err := auth.Register("x", "secret"); err == nil {
		t.Error("one-character username accepted")
	}
	if _, _, err := auth.Register("pilot", "abc"); err == nil {
		t.Error("short password accepted")
	}
	if _, _, err := auth.Register("  padded  ", "secret"); err != nil {
		t.Errorf("trimmed username rejected: %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("pilot", "secret")
	if err != nil {
		t.Fatal(err)
	}

	gotID, username, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if gotID != id || username != "pilot" {
		t.Errorf("claims = (%d, %s), want (%d, pilot)", gotID, username, id)
	}

	if _, _, err := auth.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token validated")
	}

	// A second Auth over the same database shares the persisted secret
	auth2 := NewAuth(db)
	if _, _, err := auth2.ValidateToken(token); err != nil {
		t.Errorf("token rejected after secret reload: %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	auth := NewAuth(newTestDB(t))

	for i := 0; i < maxLoginAttempts; i++ {
		auth.Login("pilot", "wrong", "5.6.7.8")
	}
	_, _, err := auth.Login("pilot", "wrong", "5.6.7.8")
	if err == nil || err.Error() != "too many login attempts, try again later" {
		t.Errorf("err = %v, want rate limit rejection", err)
	}

	// Other addresses are unaffected
	if _, _, err := auth.Login("pilot", "wrong", "9.9.9.9"); err == nil || err.Error() == "too many login attempts, try again later" {
		t.Error("rate limit leaked across addresses")
	}
}

func TestSnapshotPersistenceRoundTrip(t *testing.T) {
	db := newTestDB(t)
	id, err := db.CreateAccount("pilot", "hash")
	if err != nil {
		t.Fatal(err)
	}

	if snap, err := db.LoadSnapshot(id); err != nil || snap != nil {
		t.Fatalf("fresh account: snap=%v err=%v, want nil,nil", snap, err)
	}

	in := &PlayerSnapshot{
		X: 12.5, Y: -40, Angle: 1.25,
		ShipType: 1, Credits: 4242,
		Cargo:        []int{0, 3, 1},
		Weapons:      []string{"Blaster", "Lance"},
		ActiveWeapon: "Lance",
		Health:       88,
		System:       2,
		DockedAt:     &DockRef{System: 2, Planet: 0},
		Missions: []*Mission{{
			ID: "MSN-000123", Type: MissionCargo, Status: MissionAccepted,
			DestSystem: 1, Good: "Ore", Quantity: 3, Reward: 700,
		}},
	}
	if err := db.SaveSnapshot(id, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := db.LoadSnapshot(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Credits != 4242 || out.System != 2 || out.ActiveWeapon != "Lance" {
		t.Errorf("snapshot = %+v", out)
	}
	if out.DockedAt == nil || out.DockedAt.System != 2 {
		t.Error("dock reference lost")
	}
	if len(out.Missions) != 1 || out.Missions[0].ID != "MSN-000123" {
		t.Error("missions lost")
	}

	// Overwriting replaces the previous save
	in.Credits = 1
	if err := db.SaveSnapshot(id, in); err != nil {
		t.Fatal(err)
	}
	out, _ = db.LoadSnapshot(id)
	if out.Credits != 1 {
		t.Error("save not overwritten")
	}
}
