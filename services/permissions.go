package services

import "github.com/Dosada05/padel-manager/models"

type Permission string

const (
	PermTournamentCreate  Permission = "tournament:create"
	PermTournamentManage  Permission = "tournament:manage"
	PermInscriptionCreate Permission = "inscription:create"
	PermInscriptionManage Permission = "inscription:manage"
	PermZoneStart         Permission = "zone:start"
	PermBracketGenerate   Permission = "bracket:generate"
	PermMatchResult       Permission = "match:result"
	PermMatchManage       Permission = "match:manage"
	PermClubUpdate        Permission = "club:update"
	PermStandingsView     Permission = "standings:view"
)

var rolePermissions = map[models.UserRole][]Permission{
	models.RolePlayer: {
		PermInscriptionCreate,
		PermStandingsView,
	},
	models.RoleClub: {
		PermTournamentCreate,
		PermTournamentManage,
		PermInscriptionManage,
		PermZoneStart,
		PermBracketGenerate,
		PermMatchResult,
		PermMatchManage,
		PermClubUpdate,
		PermStandingsView,
	},
	models.RoleCoach: {
		PermStandingsView,
	},
}

// HasPermission is a plain lookup; admins hold every permission.
func HasPermission(role models.UserRole, perm Permission) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsFor lists what a role may do, for the /me payload.
func PermissionsFor(role models.UserRole) []Permission {
	if role == models.RoleAdmin {
		all := make([]Permission, 0)
		seen := make(map[Permission]bool)
		for _, role := range []models.UserRole{models.RolePlayer, models.RoleClub, models.RoleCoach} {
			for _, p := range rolePermissions[role] {
				if !seen[p] {
					seen[p] = true
					all = append(all, p)
				}
			}
		}
		return all
	}
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
