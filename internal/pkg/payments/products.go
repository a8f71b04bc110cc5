package payments

import (
	"strings"

	"github.com/claridapp/clarid/app/models"
)

// ProductRule maps a provider product to the credits it grants and an
// optional tier upgrade.
type ProductRule struct {
	Credits int
	Tier    string
}

const defaultProductKey = "default"

// Static product configuration. Keys are normalized provider product IDs;
// the "default" entry is the required fallback for unmapped products.
var productCreditRules = map[string]ProductRule{
	// One-off credit packs
	"prod_10_creditos":  {Credits: 10},
	"prod_50_creditos":  {Credits: 50},
	"prod_100_creditos": {Credits: 100},
	"prod_500_creditos": {Credits: 500},

	// Subscription plans
	"prod_plano_pro":  {Credits: 100, Tier: models.TierPro},
	"prod_plano_opus": {Credits: 500, Tier: models.TierOpus},

	defaultProductKey: {Credits: 10},
}

// RuleForProduct resolves the credit rule for a provider product ID, falling
// back to the default rule for unmapped products.
func RuleForProduct(productID string) ProductRule {
	if rule, ok := productCreditRules[normalizeProductID(productID)]; ok {
		return rule
	}
	return productCreditRules[defaultProductKey]
}

func normalizeProductID(id string) string {
	normalized := strings.ToLower(strings.TrimSpace(id))
	return strings.ReplaceAll(normalized, "-", "_")
}
