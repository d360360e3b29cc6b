package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Scanner diagnostics.
	ScanInfo                Code = 1000
	ScanBadSignature        Code = 1001
	ScanUnterminatedString  Code = 1002
	ScanUnterminatedGroup   Code = 1003
	ScanDuplicateDefinition Code = 1004

	// Resolver diagnostics.
	ResolveInfo          Code = 2000
	ResolveForwardRef    Code = 2001
	ResolveGuardedImport Code = 2002
	ResolveLocalFunction Code = 2003
	ResolveMissingModule Code = 2004
	ResolveBadAnnotation Code = 2005

	// Type-comment backfill diagnostics.
	CommentInfo            Code = 3000
	CommentAmbiguousSource Code = 3001
	CommentUnparseable     Code = 3002
	CommentArgCount        Code = 3003

	// Splicer and configuration diagnostics.
	SpliceInfo             Code = 4000
	ConfigInvalidDefaults  Code = 4001
	ConfigInvalidFormatter Code = 4002
)

func (c Code) String() string {
	return fmt.Sprintf("TD%04d", uint16(c))
}
