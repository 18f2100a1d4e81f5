// Package authz decides who may change a listing. The only rule is ownership;
// there is no role hierarchy and no admin override.
package authz

import "github.com/geocoder89/listinghub/internal/apperr"

var ErrForbidden = apperr.New(apperr.KindForbidden, "You can only modify your own posts")

func Authorize(ownerID, requesterID int64) error {
	if ownerID == 0 || ownerID != requesterID {
		return ErrForbidden
	}
	return nil
}
