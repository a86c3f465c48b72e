package google

// RequiredScopes are the OAuth scopes a bearer token must carry for a fetch run:
// the user-info lookup and read-only access to messages and attachments.
var RequiredScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/gmail.readonly",
}
