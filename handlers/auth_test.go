package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"mostralo-api/models"
)

func register(t *testing.T, body string) (int, map[string]interface{}) {
	t.Helper()
	c, w := testContext(jsonRequest(http.MethodPost, body), 0, "")
	Register(c)
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return w.Code, resp
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	setupHandlerTest(t)

	code, _ := register(t, `{"name":"Eve","email":"eve@example.com","password":"secret1","role":"admin"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("admin signup status = %d, want 400", code)
	}
}

func TestRegisterValidatesPhone(t *testing.T) {
	db := setupHandlerTest(t)

	code, _ := register(t, `{"name":"Ana","email":"ana@example.com","password":"secret1","role":"customer","phone":"call me"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("bad phone status = %d, want 400", code)
	}

	code, _ = register(t, `{"name":"Ana","email":"ana@example.com","password":"secret1","role":"customer","phone":"+55 (11) 91234-5678"}`)
	if code != http.StatusCreated {
		t.Fatalf("valid phone status = %d, want 201", code)
	}

	var user models.User
	if err := db.Where("email = ?", "ana@example.com").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Phone != "+55 (11) 91234-5678" {
		t.Errorf("phone = %q", user.Phone)
	}
}

func TestRegisterStoreOwnerOnboardingHint(t *testing.T) {
	setupHandlerTest(t)

	code, resp := register(t, `{"name":"Rosa","email":"rosa@example.com","password":"secret1","role":"store"}`)
	if code != http.StatusCreated {
		t.Fatalf("store signup status = %d, want 201", code)
	}
	if _, ok := resp["next"]; !ok {
		t.Error("store signup response missing the onboarding hint")
	}
	if resp["token"] == "" {
		t.Error("no token issued")
	}

	code, resp = register(t, `{"name":"Zé","email":"ze@example.com","password":"secret1","role":"driver"}`)
	if code != http.StatusCreated {
		t.Fatalf("driver signup status = %d, want 201", code)
	}
	if _, ok := resp["next"]; ok {
		t.Error("driver signup carries a store onboarding hint")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupHandlerTest(t)

	if code, _ := register(t, `{"name":"Ana","email":"ana@example.com","password":"secret1","role":"customer"}`); code != http.StatusCreated {
		t.Fatalf("first signup status = %d, want 201", code)
	}
	if code, _ := register(t, `{"name":"Ana 2","email":"ana@example.com","password":"secret1","role":"customer"}`); code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", code)
	}
}
