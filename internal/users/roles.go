package users

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/reshop/server/internal/models"
	"github.com/reshop/server/internal/store"
)

// RoleDirectory reads stored roles from the users collection on every call.
type RoleDirectory struct {
	users store.Documents
}

func NewRoleDirectory(users store.Documents) *RoleDirectory {
	return &RoleDirectory{users: users}
}

// RoleOf returns the stored role for email, or "" if there is no record or
// the role field is not a string.
func (d *RoleDirectory) RoleOf(ctx context.Context, email string) (string, error) {
	doc, err := d.users.FindOne(ctx, bson.M{models.FieldEmail: email})
	if err != nil || doc == nil {
		return models.RoleNone, err
	}
	role, _ := doc[models.FieldRole].(string)
	return role, nil
}
