package security

// In-memory registry of ops API clients (replace with config/DB later).
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read"}
	Enabled bool
}

var Clients = map[string]Client{
	"ops-console":   {ID: "ops-console", Secret: "ops-console-secret", Perms: []string{"orders.read"}, Enabled: true},
	"svc-analytics": {ID: "svc-analytics", Secret: "ana-secret", Perms: []string{"orders.read"}, Enabled: true},
}
