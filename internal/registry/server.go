package registry

// Server is one credential record. IP is the unique key; it is compared
// byte-for-byte with no normalization.
type Server struct {
	User     string   `json:"user"`
	IP       string   `json:"ip"`
	Note     string   `json:"note"`
	Password string   `json:"password"`
	Tags     []string `json:"tags"`
}

// normalized returns a copy with its own non-nil Tags slice.
func (s Server) normalized() Server {
	tags := make([]string, len(s.Tags))
	copy(tags, s.Tags)
	s.Tags = tags
	return s
}

// sameAs reports whether two records carry the same payload. Tags compare
// as sets.
func (s Server) sameAs(o Server) bool {
	if s.User != o.User || s.IP != o.IP || s.Note != o.Note || s.Password != o.Password {
		return false
	}
	return sameSet(s.Tags, o.Tags)
}

func sameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, ok := as[v]; !ok {
			return false
		}
		bs[v] = struct{}{}
	}
	return len(as) == len(bs)
}

func indexOf(servers []Server, ip string) int {
	for i := range servers {
		if servers[i].IP == ip {
			return i
		}
	}
	return -1
}

func cloneServers(servers []Server) []Server {
	out := make([]Server, len(servers))
	for i, s := range servers {
		out[i] = s.normalized()
	}
	return out
}

// RedactedPassword replaces passwords in anything shown to a user or agent.
const RedactedPassword = "***"

// Redacted returns a copy safe for display. An empty password stays empty.
func (s Server) Redacted() Server {
	s = s.normalized()
	if s.Password != "" {
		s.Password = RedactedPassword
	}
	return s
}

// HasTag reports whether s carries tag.
func (s Server) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FilterByTag returns the servers carrying tag, in order. An empty tag
// matches everything.
func FilterByTag(servers []Server, tag string) []Server {
	if tag == "" {
		return servers
	}
	out := make([]Server, 0, len(servers))
	for _, s := range servers {
		if s.HasTag(tag) {
			out = append(out, s)
		}
	}
	return out
}
