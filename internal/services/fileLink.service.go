package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"musicbot/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
)

const fileLinkIssuer = "musicbot"

var ErrInvalidFileLink = errors.New("invalid or expired file link")

// FileClaims identify one published asset.
type FileClaims struct {
	JobID string `json:"job"`
	File  string `json:"file"`
	jwt.RegisteredClaims
}

// FileLinkService publishes pipeline outputs for the web front end and signs
// short-lived download tokens for them.
type FileLinkService struct {
	secret    []byte
	publicDir string
	ttl       time.Duration
	log       logger.Logger
}

func NewFileLinkService(cfg config.Config) (*FileLinkService, error) {
	log := logger.New("fileLinkService")

	secret := []byte(cfg.FileLinkSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, log.Err("failed to generate file link secret", err)
		}
		log.Warn("FILE_LINK_SECRET not set, links will not survive a restart")
	}

	ttl := time.Duration(cfg.FileLinkTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &FileLinkService{
		secret:    secret,
		publicDir: cfg.PublicDir,
		ttl:       ttl,
		log:       log,
	}, nil
}

func (s *FileLinkService) TTL() time.Duration {
	return s.ttl
}

// Publish copies an asset into the public directory under jobID and returns
// a signed token for it. The source file is left in place.
func (s *FileLinkService) Publish(jobID, sourcePath, fileName string) (string, error) {
	log := s.log.Function("Publish")

	fileName = filepath.Base(fileName)
	dir := filepath.Join(s.publicDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", log.Err("failed to create public directory", err, "dir", dir)
	}

	if err := copyFile(sourcePath, filepath.Join(dir, fileName)); err != nil {
		return "", log.Err("failed to publish file", err, "source", sourcePath)
	}

	return s.Sign(jobID, fileName)
}

func (s *FileLinkService) Sign(jobID, fileName string) (string, error) {
	now := time.Now()
	claims := FileClaims{
		JobID: jobID,
		File:  fileName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    fileLinkIssuer,
			Subject:   jobID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", s.log.Function("Sign").Err("failed to sign file link", err)
	}
	return signed, nil
}

// Parse validates a token. Tokens without a file name are job tokens used by
// the websocket stream.
func (s *FileLinkService) Parse(tokenString string) (*FileClaims, error) {
	var claims FileClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(fileLinkIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.JobID == "" {
		return nil, ErrInvalidFileLink
	}
	return &claims, nil
}

// Resolve returns the on-disk path of the asset a token refers to.
func (s *FileLinkService) Resolve(tokenString string) (string, *FileClaims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return "", nil, err
	}
	if claims.File == "" || claims.File != filepath.Base(claims.File) || strings.Contains(claims.JobID, "..") {
		return "", nil, ErrInvalidFileLink
	}

	path := filepath.Join(s.publicDir, claims.JobID, claims.File)
	if _, err := os.Stat(path); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidFileLink, err)
	}
	return path, claims, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
