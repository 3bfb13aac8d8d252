// Package mailbox reads the reply inbox over IMAP. It exposes just what
// the reconciler needs: the unseen messages' sender addresses, and a way
// to mark them seen so they are never reprocessed.
package mailbox

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"outreach_backend/platform/config"
)

// Message is one unseen inbox message, reduced to what reply matching
// needs.
type Message struct {
	UID  uint32
	From string
}

// Session is an open, logged-in IMAP connection with INBOX selected.
type Session struct {
	client *imapclient.Client
}

// IMAPDialer opens sessions against the configured mailbox.
type IMAPDialer struct {
	addr     string
	username string
	password string
	host     string
}

func NewDialer(cfg config.IMAPConfig) *IMAPDialer {
	return &IMAPDialer{
		addr:     fmt.Sprintf("%s:%d", cfg.GetIMAPHost(), cfg.GetIMAPPort()),
		username: cfg.GetIMAPUsername(),
		password: cfg.GetIMAPPassword(),
		host:     cfg.GetIMAPHost(),
	}
}

// Dial connects over TLS, logs in and selects INBOX. The caller owns the
// session and must Close it.
func (d *IMAPDialer) Dial() (*Session, error) {
	if d.username == "" || d.password == "" {
		return nil, errors.New("imap credentials are not configured")
	}

	client, err := imapclient.DialTLS(d.addr, &imapclient.Options{
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: d.host,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	if err := client.Login(d.username, d.password).Wait(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}

	if _, err := client.Select("INBOX", &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("imap select inbox: %w", err)
	}

	return &Session{client: client}, nil
}

// Unseen returns the sender address of every unseen message. Messages
// stay unseen; reading uses BODY.PEEK semantics via envelope-only fetch.
func (s *Session) Unseen() ([]Message, error) {
	searchData, err := s.client.UIDSearch(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	fetchCmd := s.client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:      true,
		Envelope: true,
	})
	defer func() { _ = fetchCmd.Close() }()

	var out []Message
	for {
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		msg := Message{UID: uint32(buf.UID)}
		if buf.Envelope != nil {
			msg.From = firstAddr(buf.Envelope.From)
		}
		out = append(out, msg)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// MarkSeen flags one message seen. Store has no Wait in go-imap v2;
// closing the command yields the final status.
func (s *Session) MarkSeen(uid uint32) error {
	cmd := s.client.Store(imap.UIDSetNum(imap.UID(uid)), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

// Close logs out and drops the connection.
func (s *Session) Close() error {
	err := s.client.Logout().Wait()
	_ = s.client.Close()
	return err
}

func firstAddr(addrs []imap.Address) string {
	for i := range addrs {
		if addr := strings.TrimSpace(addrs[i].Addr()); addr != "" {
			return addr
		}
	}
	return ""
}
