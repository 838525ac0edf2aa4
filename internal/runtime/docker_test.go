package runtime

import "testing"

func TestContainerName(t *testing.T) {
	if got := containerName("abc", []string{"/plex"}); got != "plex" {
		t.Fatalf("name = %q, want plex", got)
	}
	if got := containerName("0123456789abcdef0123", nil); got != "0123456789ab" {
		t.Fatalf("name = %q, want short id", got)
	}
}

func TestSortServicesByName(t *testing.T) {
	services := []Service{{Name: "plex"}, {Name: "caddy"}, {Name: "grafana"}}
	sortServices(services)
	want := []string{"caddy", "grafana", "plex"}
	for i, w := range want {
		if services[i].Name != w {
			t.Fatalf("services[%d] = %q, want %q", i, services[i].Name, w)
		}
	}
}

func TestHealthFromStatus(t *testing.T) {
	cases := []struct {
		status string
		want   string
	}{
		{"Up 2 hours (healthy)", "HEALTHY"},
		{"Up 5 minutes (unhealthy)", "UNHEALTHY"},
		{"Up 10 seconds (health: starting)", "STARTING"},
		{"Up 2 hours", ""},
		{"Exited (1) 3 days ago", ""},
	}
	for _, tc := range cases {
		if got := healthFromStatus(tc.status); got != tc.want {
			t.Fatalf("healthFromStatus(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
}
