package oci

// CheckMutabilityPolicy validates a reference against the tag mutability
// rule: operations on the floating "latest" tag are rejected unless the
// caller has explicitly allowed them. A reference with no tag at all
// resolves to the default tag for the purpose of this check, so
// digest-pinned references need the override too.
//
// The check runs before any network I/O.
func CheckMutabilityPolicy(ref Reference, allowLatest bool) error {
	tag, ok := ref.Tag()
	if !ok {
		tag = DefaultTag
	}
	if tag == DefaultTag && !allowLatest {
		return ErrLatestTag
	}
	return nil
}
