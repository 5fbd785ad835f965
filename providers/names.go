package providers

const (
	// Identifier for ip-api.com.
	NameIPAPI = "ipapi"

	// Identifier for ipapi.co.
	NameIPAPICo = "ipapico"

	// Identifier for ipinfo.io.
	NameIPInfo = "ipinfo"

	// Identifier for tools.keycdn.com.
	NameKeyCDN = "keycdn"

	// Identifier for a local MaxMind GeoLite2/GeoIP2 City database.
	NameMaxmindFile = "maxmind_file"
)
