// Package policy holds the ownership rules of the API. Every function is a
// pure check of an actor against a resource.
package policy

import "bitwise74/roleplay-api/internal/model"

// CanUpdateUser allows users to edit only their own account
func CanUpdateUser(actor, target uint) bool {
	return actor != 0 && actor == target
}

// CanManageTable allows only the master to edit or delete a table
func CanManageTable(actor uint, t *model.Table) bool {
	return t != nil && actor != 0 && actor == t.Master
}

// CanRemovePlayer lets the master kick anyone but themself, and lets a player
// leave on their own. The master can never be removed.
func CanRemovePlayer(actor uint, t *model.Table, player uint) bool {
	if t == nil || player == t.Master {
		return false
	}

	return actor != 0 && (actor == t.Master || actor == player)
}

func CanListRequests(actor, master uint) bool {
	return actor != 0 && actor == master
}

// CanDecideRequest allows the master of the requested table to accept or
// reject it
func CanDecideRequest(actor uint, t *model.Table) bool {
	return CanManageTable(actor, t)
}
