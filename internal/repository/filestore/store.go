package filestore

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/internal/cryptox"
)

// Store persists one value as a single JSON blob on disk. Writes go to a
// temp file in the same directory followed by an atomic rename, so readers
// never observe a torn blob. When a passphrase is configured the payload is
// sealed with AES-GCM under an argon2id-derived key.
type Store struct {
	path       string
	passphrase []byte
}

// envelope is the on-disk shape of an encrypted blob.
type envelope struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

func New(path, passphrase string) *Store {
	s := &Store{path: path}
	if passphrase != "" {
		s.passphrase = []byte(passphrase)
	}
	return s
}

// Load deserializes the blob into v. A missing file is not an error; v is
// left untouched and false is returned.
func (s *Store) Load(v any) (bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to read store %s", s.path)
	}

	if s.passphrase != nil {
		raw, err = s.unseal(raw)
		if err != nil {
			return false, err
		}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return false, errors.Wrapf(err, "failed to decode store %s", s.path)
	}
	return true, nil
}

// Save serializes v and replaces the blob atomically.
func (s *Store) Save(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode store %s", s.path)
	}

	if s.passphrase != nil {
		raw, err = s.seal(raw)
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create store directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp store file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to write temp store file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to close temp store file")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to replace store %s", s.path)
	}
	return nil
}

func (s *Store) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	key := cryptox.DeriveKey(s.passphrase, salt)
	ciphertext, nonce, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		return nil, err
	}

	return json.Marshal(envelope{
		Version: 1,
		Salt:    salt,
		Nonce:   nonce,
		Data:    ciphertext,
	})
}

func (s *Store) unseal(raw []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrapf(err, "failed to decode sealed store %s", s.path)
	}

	key := cryptox.DeriveKey(s.passphrase, env.Salt)
	return cryptox.Decrypt(env.Data, env.Nonce, key)
}
