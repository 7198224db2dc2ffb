package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/usuarios-api/pkg/config"
)

var errNoIPv4 = errors.New("no hay IPv4")

// NewPool crea el pool de conexiones de la tabla de cuentas.
// Con ForceIPv4 el host (de DATABASE_URL o de DB_HOST) se resuelve a IPv4 antes de conectar
// y el dial usa tcp4; si no hay IPv4 se conecta con la dirección original.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	dsn := cfg.ConnectionString()
	if cfg.ForceIPv4 {
		res := ipv4Resolver{fallbackDNS: cfg.FallbackDNS}
		dsn = res.rewriteDSN(ctx, cfg)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if cfg.ForceIPv4 {
		res := ipv4Resolver{fallbackDNS: cfg.FallbackDNS}
		poolConfig.ConnConfig.DialFunc = res.dial
	}

	poolConfig.MaxConns = int32(max(cfg.MaxConns, 1))
	poolConfig.MinConns = min(2, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// ipv4Resolver resuelve hosts de base de datos a IPv4 con el DNS del sistema y,
// solo si fallbackDNS está configurado, con ese servidor como segundo intento.
type ipv4Resolver struct {
	fallbackDNS string
}

func (r ipv4Resolver) resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", fmt.Errorf("%s: %w", host, errNoIPv4)
	}
	ip, err := lookupIPv4(ctx, net.DefaultResolver, host)
	if err == nil || r.fallbackDNS == "" {
		return ip, err
	}
	fallback := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "udp", r.fallbackDNS)
		},
	}
	return lookupIPv4(ctx, fallback, host)
}

func (r ipv4Resolver) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := r.resolve(ctx, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

// rewriteDSN devuelve el DSN con el host sustituido por su IPv4 cuando se resuelve.
func (r ipv4Resolver) rewriteDSN(ctx context.Context, cfg config.DBConfig) string {
	if cfg.DatabaseURL == "" {
		if ip, err := r.resolve(ctx, cfg.Host); err == nil {
			cfg.Host = ip
		}
		return cfg.DSN()
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil || u.Hostname() == "" {
		return cfg.DatabaseURL
	}
	ip, err := r.resolve(ctx, u.Hostname())
	if err != nil {
		return cfg.DatabaseURL
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	u.Host = net.JoinHostPort(ip, port)
	return u.String()
}

func lookupIPv4(ctx context.Context, res *net.Resolver, host string) (string, error) {
	ips, err := res.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip.String(), nil
		}
	}
	return "", fmt.Errorf("%s: %w", host, errNoIPv4)
}
