package purchaseorder

import "go.uber.org/fx"

// Module provides the purchase order repository to Fx, exposed as a Store.
var Module = fx.Provide(
	NewRepository,
	func(r *Repository) Store { return r },
)
