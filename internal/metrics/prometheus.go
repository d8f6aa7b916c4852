package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PromotionsPurchased = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incontridolci_promotions_purchased_total",
		Help: "Promotions purchased, by promotion mode",
	}, []string{"mode"})

	PromotionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incontridolci_promotion_failures_total",
		Help: "Rejected or failed promote-listing requests, by error kind",
	}, []string{"kind"})

	CreditsDebited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "incontridolci_credits_debited_total",
		Help: "Credits debited for promotions",
	})

	CreditsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "incontridolci_credits_granted_total",
		Help: "Credits granted by administrators",
	})

	TransactionLogFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "incontridolci_credit_transaction_log_failures_total",
		Help: "Credit ledger entries that could not be written after a successful debit",
	})

	PromotionsCleared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "incontridolci_promotions_cleared_total",
		Help: "Ended promotions reset by the expiry sweeper",
	})
)

func ObservePromotionPurchased(mode string, cost int) {
	PromotionsPurchased.WithLabelValues(label(mode)).Inc()
	if cost > 0 {
		CreditsDebited.Add(float64(cost))
	}
}

func ObservePromotionFailure(kind string) {
	PromotionFailures.WithLabelValues(label(kind)).Inc()
}

func ObserveCreditsGranted(amount int) {
	if amount > 0 {
		CreditsGranted.Add(float64(amount))
	}
}

func ObservePromotionsCleared(count int64) {
	if count > 0 {
		PromotionsCleared.Add(float64(count))
	}
}

func label(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
