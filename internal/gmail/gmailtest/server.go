// Package gmailtest provides an in-process fake of the Gmail and user-info
// REST endpoints for tests.
package gmailtest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	gmail "google.golang.org/api/gmail/v1"
)

// Server is a fake Gmail API. Configure the exported fields before issuing
// requests; they are read under the server lock.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// Token is the bearer token requests must carry. Empty accepts any token.
	Token string

	// UserInfoStatus is the status returned by the user-info endpoint (default 200).
	UserInfoStatus int
	// UserEmail is returned by the user-info endpoint.
	UserEmail string

	// Pages holds the message ids of each search result page, in order.
	Pages [][]string
	// Messages maps message ids to the full message returned by messages.get.
	Messages map[string]*gmail.Message
	// Attachments maps "messageID/attachmentID" to the attachment body.
	Attachments map[string]*gmail.MessagePartBody

	requests []string
	queries  []string
}

// NewServer starts a fake Gmail API. The caller must Close it.
func NewServer() *Server {
	s := &Server{
		UserInfoStatus: http.StatusOK,
		UserEmail:      "jane@example.com",
		Messages:       map[string]*gmail.Message{},
		Attachments:    map[string]*gmail.MessagePartBody{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth2/v2/userinfo", s.handleUserInfo)
	mux.HandleFunc("GET /gmail/v1/users/me/messages", s.handleList)
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", s.handleGet)
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}/attachments/{aid}", s.handleAttachment)

	s.Server = httptest.NewServer(s.authorize(mux))
	return s
}

// Endpoint returns the base URL to pass to option.WithEndpoint.
func (s *Server) Endpoint() string {
	return s.URL + "/"
}

// AddMessage registers a message and returns it for further setup.
func (s *Server) AddMessage(msg *gmail.Message) *gmail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages[msg.Id] = msg
	return msg
}

// AddAttachment registers attachment content served for messageID/attachmentID.
// A nil data slice registers a body without a data field.
func (s *Server) AddAttachment(messageID, attachmentID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body := &gmail.MessagePartBody{AttachmentId: attachmentID, Size: int64(len(data))}
	if data != nil {
		body.Data = base64.URLEncoding.EncodeToString(data)
	}
	s.Attachments[messageID+"/"+attachmentID] = body
}

// Requests returns the paths of all requests received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Queries returns the q parameter of every search request.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// CountPrefix counts received requests whose path starts with prefix.
func (s *Server) CountPrefix(prefix string) int {
	n := 0
	for _, p := range s.Requests() {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		want := s.Token
		s.mu.Unlock()

		if want != "" && r.Header.Get("Authorization") != "Bearer "+want {
			writeError(w, http.StatusUnauthorized, "Invalid Credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	status, email := s.UserInfoStatus, s.UserEmail
	s.mu.Unlock()

	if status != http.StatusOK {
		writeError(w, status, "user info rejected")
		return
	}
	writeJSON(w, map[string]string{"id": "1", "email": email})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, r.URL.Query().Get("q"))

	page := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(tok, "page-"))
		if err != nil || n <= 0 || n >= len(s.Pages) {
			writeError(w, http.StatusBadRequest, "invalid page token")
			return
		}
		page = n
	}

	res := &gmail.ListMessagesResponse{}
	if page < len(s.Pages) {
		for _, id := range s.Pages[page] {
			res.Messages = append(res.Messages, &gmail.Message{Id: id, ThreadId: "t-" + id})
		}
		if page+1 < len(s.Pages) {
			res.NextPageToken = fmt.Sprintf("page-%d", page+1)
		}
	}
	res.ResultSizeEstimate = int64(len(res.Messages))
	writeJSON(w, res)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	msg, ok := s.Messages[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	writeJSON(w, msg)
}

func (s *Server) handleAttachment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body, ok := s.Attachments[r.PathValue("id")+"/"+r.PathValue("aid")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "attachment not found")
		return
	}
	writeJSON(w, body)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": msg},
	})
}

// AttachmentPart builds a message part referencing an attachment.
func AttachmentPart(partID, filename, attachmentID string) *gmail.MessagePart {
	return &gmail.MessagePart{
		PartId:   partID,
		Filename: filename,
		MimeType: "application/octet-stream",
		Body:     &gmail.MessagePartBody{AttachmentId: attachmentID},
	}
}

// Message builds a multipart/mixed message with a text body and the given parts.
func Message(id string, parts ...*gmail.MessagePart) *gmail.Message {
	all := []*gmail.MessagePart{{
		PartId:   "0",
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("see attached"))},
	}}
	all = append(all, parts...)
	return &gmail.Message{
		Id:       id,
		ThreadId: "t-" + id,
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Body:     &gmail.MessagePartBody{},
			Parts:    all,
		},
	}
}
