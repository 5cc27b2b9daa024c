package snmp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
)

// ErrNoTarget is returned when credentials carry no host.
var ErrNoTarget = errors.New("snmp: no target host")

// Credentials describe how to reach one device.
type Credentials struct {
	Host      string
	Port      uint16
	Version   string // "1", "2c" or "3"
	Community string

	Username     string
	AuthProtocol string
	AuthPassword string
	PrivProtocol string
	PrivPassword string

	Timeout        time.Duration
	Retries        int
	MaxRepetitions uint32
}

// Client is a Session backed by gosnmp. Every request opens its own UDP
// socket, so a Client can be shared by concurrent adapters of one device.
type Client struct {
	creds  Credentials
	logger *zap.Logger
}

// New returns a Client for creds.
func New(creds Credentials, logger *zap.Logger) (*Client, error) {
	if creds.Host == "" {
		return nil, ErrNoTarget
	}
	if creds.Port == 0 {
		creds.Port = 161
	}
	if creds.Timeout == 0 {
		creds.Timeout = gosnmp.Default.Timeout
	}
	if creds.MaxRepetitions == 0 {
		creds.MaxRepetitions = 25
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{creds: creds, logger: logger.With(zap.String("host", creds.Host))}, nil
}

// Host returns the target address.
func (c *Client) Host() string { return c.creds.Host }

func (c *Client) connect(ctx context.Context, q Query) (*gosnmp.GoSNMP, error) {
	g := &gosnmp.GoSNMP{
		Context:        ctx,
		Target:         c.creds.Host,
		Port:           c.creds.Port,
		Community:      c.creds.Community,
		Version:        gosnmp.Version2c,
		Timeout:        c.creds.Timeout,
		Retries:        c.creds.Retries,
		MaxRepetitions: c.creds.MaxRepetitions,
	}

	switch c.creds.Version {
	case "1":
		g.Version = gosnmp.Version1
	case "3":
		g.Version = gosnmp.Version3
		g.SecurityModel = gosnmp.UserSecurityModel
		g.MsgFlags = msgFlags(c.creds)
		g.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 c.creds.Username,
			AuthenticationProtocol:   authProtocol(c.creds.AuthProtocol),
			AuthenticationPassphrase: c.creds.AuthPassword,
			PrivacyProtocol:          privProtocol(c.creds.PrivProtocol),
			PrivacyPassphrase:        c.creds.PrivPassword,
		}
	}

	if q.Context != "" {
		if g.Version == gosnmp.Version3 {
			g.ContextName = q.Context
		} else {
			// community string indexing
			g.Community = c.creds.Community + "@" + q.Context
		}
	}

	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("connect error: %w", err)
	}
	return g, nil
}

// Get fetches a single OID.
func (c *Client) Get(ctx context.Context, oid string, opts ...Option) (Results, error) {
	q := Apply(opts...)
	g, err := c.connect(ctx, q)
	if err != nil {
		return nil, err
	}
	defer g.Conn.Close()

	packet, err := g.Get([]string{oid})
	if err != nil {
		return nil, fmt.Errorf("SNMP get error: %w", err)
	}
	if packet.Error != gosnmp.NoError {
		return nil, fmt.Errorf("SNMP get error: %s", packet.Error)
	}

	results := make(Results, len(packet.Variables))
	for _, pdu := range packet.Variables {
		if Empty(pdu) {
			continue
		}
		results[q.Key(oid, pdu.Name)] = pdu
	}
	return results, nil
}

// Walk returns every instance below oid.
func (c *Client) Walk(ctx context.Context, oid string, opts ...Option) (Results, error) {
	results := make(Results)
	err := c.walk(ctx, oid, results, opts...)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SafeWalk is Walk without the error: a failure yields the partial results.
func (c *Client) SafeWalk(ctx context.Context, oid string, opts ...Option) Results {
	results := make(Results)
	if err := c.walk(ctx, oid, results, opts...); err != nil {
		c.logger.Debug("fail-safe walk", zap.String("oid", oid), zap.Int("partial", len(results)), zap.Error(err))
	}
	return results
}

func (c *Client) walk(ctx context.Context, oid string, results Results, opts ...Option) error {
	q := Apply(opts...)
	g, err := c.connect(ctx, q)
	if err != nil {
		return err
	}
	defer g.Conn.Close()

	fn := func(pdu gosnmp.SnmpPDU) error {
		if Empty(pdu) {
			return nil
		}
		results[q.Key(oid, pdu.Name)] = pdu
		return nil
	}

	if g.Version == gosnmp.Version1 {
		err = g.Walk(oid, fn)
	} else {
		err = g.BulkWalk(oid, fn)
	}
	if err != nil {
		return fmt.Errorf("SNMP walk error: %w", err)
	}
	return nil
}

// Exists reports whether the device answers for oid, trying a GET first
// and a subtree walk second. Any failure means false.
func (c *Client) Exists(ctx context.Context, oid string, opts ...Option) bool {
	if results, err := c.Get(ctx, oid, opts...); err == nil && len(results) > 0 {
		return true
	}
	return len(c.SafeWalk(ctx, oid, opts...)) > 0
}

func msgFlags(creds Credentials) gosnmp.SnmpV3MsgFlags {
	switch {
	case creds.PrivPassword != "" && creds.AuthPassword != "":
		return gosnmp.AuthPriv
	case creds.AuthPassword != "":
		return gosnmp.AuthNoPriv
	}
	return gosnmp.NoAuthNoPriv
}

func authProtocol(name string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToUpper(name) {
	case "MD5":
		return gosnmp.MD5
	case "SHA", "SHA1":
		return gosnmp.SHA
	case "SHA224":
		return gosnmp.SHA224
	case "SHA256":
		return gosnmp.SHA256
	case "SHA384":
		return gosnmp.SHA384
	case "SHA512":
		return gosnmp.SHA512
	}
	return gosnmp.NoAuth
}

func privProtocol(name string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToUpper(name) {
	case "DES":
		return gosnmp.DES
	case "AES", "AES128":
		return gosnmp.AES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	case "AES192C":
		return gosnmp.AES192C
	case "AES256C":
		return gosnmp.AES256C
	}
	return gosnmp.NoPriv
}
