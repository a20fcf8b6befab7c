// Copyright 2025 The C2PA Bridge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pkcs11 provides a signer variant whose key lives in a PKCS#11
// token. Keys are located with an RFC 7512 URI and used through crypto11.
package pkcs11

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PINEnv is consulted when the URI carries no PIN.
const PINEnv = "C2PA_BRIDGE_PKCS11_PIN"

// DefaultModuleDirs are searched for module-name matches when no directory is
// configured.
var DefaultModuleDirs = []string{
	"/usr/lib64/pkcs11/",
	"/usr/lib/pkcs11/",
	"/usr/lib/x86_64-linux-gnu/softhsm/",
	"/usr/lib/softhsm/",
	"/usr/local/lib/softhsm/",
	"/opt/homebrew/lib/softhsm/",
}

var objectTypes = map[string]bool{
	"public": true, "private": true, "cert": true, "secret-key": true, "data": true,
}

// URI is a parsed "pkcs11:" URI.
type URI struct {
	path  map[string]string
	query map[string]string
}

// ParseURI parses and validates s. The URI must name a token, a slot or a
// key (id or object).
func ParseURI(s string) (*URI, error) {
	rest, ok := strings.CutPrefix(s, "pkcs11:")
	if !ok {
		return nil, fmt.Errorf("malformed pkcs11 URI %q: missing pkcs11: scheme", s)
	}

	pathPart, queryPart, _ := strings.Cut(rest, "?")

	u := &URI{}
	var err error
	if u.path, err = parseAttrs(pathPart, ";"); err != nil {
		return nil, fmt.Errorf("malformed pkcs11 URI path: %w", err)
	}
	if u.query, err = parseAttrs(queryPart, "&"); err != nil {
		return nil, fmt.Errorf("malformed pkcs11 URI query: %w", err)
	}

	if err := u.validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func parseAttrs(s, sep string) (map[string]string, error) {
	attrs := map[string]string{}
	if s == "" {
		return attrs, nil
	}
	for _, part := range strings.Split(s, sep) {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("attribute %q is not name=value", part)
		}
		decoded, err := url.PathUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		if _, dup := attrs[k]; dup {
			return nil, fmt.Errorf("attribute %s given twice", k)
		}
		attrs[k] = decoded
	}
	return attrs, nil
}

func (u *URI) validate() error {
	if s, ok := u.path["slot-id"]; ok {
		if _, err := strconv.ParseUint(s, 10, 32); err != nil {
			return fmt.Errorf("slot-id must be a 32-bit unsigned number: %q", s)
		}
	}
	if typ, ok := u.path["type"]; ok && !objectTypes[typ] {
		return fmt.Errorf("invalid object type %q", typ)
	}
	if typ := u.path["type"]; typ != "" && typ != "private" {
		return fmt.Errorf("object type %q cannot sign", typ)
	}

	_, hasSource := u.query["pin-source"]
	_, hasValue := u.query["pin-value"]
	if hasSource && hasValue {
		return errors.New("URI must not contain both pin-source and pin-value")
	}

	if p, ok := u.query["module-path"]; ok && !filepath.IsAbs(p) {
		return fmt.Errorf("module-path %q must be absolute", p)
	}

	_, hasSlot := u.path["slot-id"]
	if u.Token() == "" && !hasSlot && u.ID() == nil && u.Label() == "" {
		return errors.New("pkcs11 URI must specify at least one of token, slot-id, id or object")
	}
	return nil
}

// Token returns the token label, or "".
func (u *URI) Token() string { return u.path["token"] }

// Label returns the object label, or "".
func (u *URI) Label() string { return u.path["object"] }

// ID returns the decoded object id, or nil.
func (u *URI) ID() []byte {
	id, ok := u.path["id"]
	if !ok {
		return nil
	}
	return []byte(id)
}

// Slot returns the slot id and whether one was given.
func (u *URI) Slot() (int, bool) {
	s, ok := u.path["slot-id"]
	if !ok {
		return 0, false
	}
	n, _ := strconv.ParseUint(s, 10, 32)
	return int(n), true
}

// PIN resolves the user PIN from pin-value, pin-source (an absolute path or
// file: URI) or PINEnv, in that order. An empty result is not an error;
// some tokens need no login.
func (u *URI) PIN() (string, error) {
	if v, ok := u.query["pin-value"]; ok {
		return v, nil
	}

	if src, ok := u.query["pin-source"]; ok {
		parsed, err := url.Parse(src)
		if err != nil {
			return "", fmt.Errorf("invalid pin-source: %w", err)
		}
		if parsed.Scheme != "" && parsed.Scheme != "file" {
			return "", fmt.Errorf("pin-source scheme %q is not supported", parsed.Scheme)
		}
		if !filepath.IsAbs(parsed.Path) {
			return "", fmt.Errorf("pin-source path %q is not absolute", parsed.Path)
		}
		data, err := os.ReadFile(parsed.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read PIN: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return os.Getenv(PINEnv), nil
}

// Module resolves the module library. module-path naming a file is used as
// is; naming a directory makes it the only search directory. Otherwise
// module-name is matched case-insensitively against files in dirs, or
// DefaultModuleDirs when dirs is empty.
func (u *URI) Module(dirs []string) (string, error) {
	if p, ok := u.query["module-path"]; ok {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("module-path: %w", err)
		}
		switch {
		case info.Mode().IsRegular():
			return p, nil
		case info.IsDir():
			dirs = []string{p}
		default:
			return "", fmt.Errorf("module-path %q is not a file or directory", p)
		}
	}

	name, ok := u.query["module-name"]
	if !ok {
		return "", errors.New("neither module-path nor module-name is set")
	}
	name = strings.ToLower(name)

	if len(dirs) == 0 {
		dirs = DefaultModuleDirs
	}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.Contains(strings.ToLower(e.Name()), name) {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("no module matching %q in %v", name, dirs)
}
