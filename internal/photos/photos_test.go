package photos

import "testing"

func TestAuthorizationStatus_Allowed(t *testing.T) {
	tests := []struct {
		status AuthorizationStatus
		want   bool
	}{
		{AuthorizationAuthorized, true},
		{AuthorizationLimited, true},
		{AuthorizationDenied, false},
		{AuthorizationNotDetermined, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Allowed(); got != tt.want {
				t.Errorf("Allowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLooksLikeScreenshot(t *testing.T) {
	tests := []struct {
		names []string
		want  bool
	}{
		{[]string{"Screenshot_20240301-101500.png"}, true},
		{[]string{"IMG_0001.jpg", "Screen Shot 2024-03-01 at 10.15.00.png"}, true},
		{[]string{"IMG_0001.jpg"}, false},
		{[]string{"screen_shot.png"}, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := LooksLikeScreenshot(tt.names...); got != tt.want {
			t.Errorf("LooksLikeScreenshot(%q) = %v, want %v", tt.names, got, tt.want)
		}
	}
}
