package docstore

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Club subtree layout
const (
	clubsRoot          = "clubs"
	ledgerSegment      = "financeiro"
	categoriesSegment  = "categorias_financeiras"
	cacheSegment       = "cache"
	balanceSegment     = "balance"
	membersSegment     = "members"
	playersSegment     = "jogadores"
	logsSegment        = "logs"
	legacyCatsSegment  = "categorias"
	legacyRootLedger   = "financeiro"
	legacyRootCategory = "categorias_financeiras"
)

// Join builds a path from segments
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split returns the parent and the last segment of path
func Split(path string) (parent, key string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// ValidatePath rejects empty paths, empty segments and segments holding
// characters that are reserved in realtime database keys.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	for _, seg := range strings.Split(path, "/") {
		if err := ValidateKey(seg); err != nil {
			return fmt.Errorf("%w: %q", err, path)
		}
	}
	return nil
}

// ValidateKey checks a single path segment
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return ErrInvalidPath
	}
	if strings.ContainsAny(key, ".#$[]/") {
		return ErrInvalidPath
	}
	return nil
}

// NewID returns a new time-ordered key. Keys generated later sort after
// earlier ones.
func NewID() string {
	return ulid.Make().String()
}

// ClubLedger is the parent of the transactions of a club
func ClubLedger(clubID string) string {
	return Join(clubsRoot, clubID, ledgerSegment)
}

// ClubTransaction is the path of one transaction
func ClubTransaction(clubID, id string) string {
	return Join(ClubLedger(clubID), id)
}

// ClubCategories is the parent of the category buckets of a club
func ClubCategories(clubID string) string {
	return Join(clubsRoot, clubID, categoriesSegment)
}

// ClubCategoryBucket is the parent of the categories of one tipo
func ClubCategoryBucket(clubID, tipo string) string {
	return Join(ClubCategories(clubID), tipo)
}

// ClubCategory is the path of one category
func ClubCategory(clubID, tipo, id string) string {
	return Join(ClubCategoryBucket(clubID, tipo), id)
}

// ClubBalanceCache is the path of the cached balance of a club
func ClubBalanceCache(clubID string) string {
	return Join(clubsRoot, clubID, cacheSegment, balanceSegment)
}

// ClubMember is the membership record of uid
func ClubMember(clubID, uid string) string {
	return Join(clubsRoot, clubID, membersSegment, uid)
}

// ClubPlayers is the parent of the players of a club
func ClubPlayers(clubID string) string {
	return Join(clubsRoot, clubID, playersSegment)
}

// ClubPlayer is the path of one player
func ClubPlayer(clubID, playerID string) string {
	return Join(ClubPlayers(clubID), playerID)
}

// ClubLogs is the parent of the action log of a club
func ClubLogs(clubID string) string {
	return Join(clubsRoot, clubID, logsSegment)
}

// LegacyClubCategories is the name-keyed category list used before buckets
func LegacyClubCategories(clubID string) string {
	return Join(clubsRoot, clubID, legacyCatsSegment)
}

// LegacyRootCategoryBucket is the pre-tenant category bucket of one tipo
func LegacyRootCategoryBucket(tipo string) string {
	return Join(legacyRootCategory, tipo)
}

// LegacyRootLedger is the pre-tenant ledger
func LegacyRootLedger() string {
	return legacyRootLedger
}
