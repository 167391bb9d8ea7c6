package main

import (
	"net/http"
	"os"

	"github.com/NovaSiteWorks/api-referral/internal/commissionledger"
	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
	"github.com/NovaSiteWorks/api-referral/internal/customer"
	"github.com/NovaSiteWorks/api-referral/internal/influencer"
	"github.com/NovaSiteWorks/api-referral/internal/logger"
	"github.com/NovaSiteWorks/api-referral/internal/metrics"
	"github.com/NovaSiteWorks/api-referral/internal/referral"
	"github.com/NovaSiteWorks/api-referral/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, relying on the environment")
	}
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	database, err := db.GetDB()
	if err != nil {
		logger.Fatal("failed to connect to the database: %v", err)
	}

	if err := influencer.Migrate(database); err != nil {
		logger.Fatal("migration failed: %v", err)
	}
	if err := commissionrule.Migrate(database); err != nil {
		logger.Fatal("migration failed: %v", err)
	}
	if err := commissionledger.Migrate(database); err != nil {
		logger.Fatal("migration failed: %v", err)
	}
	if err := referral.Migrate(database); err != nil {
		logger.Fatal("migration failed: %v", err)
	}
	if err := customer.Migrate(database); err != nil {
		logger.Fatal("migration failed: %v", err)
	}

	// Handlers
	influencerHandler := influencer.NewHandler(database)
	overrideHandler := commissionrule.NewHandler(commissionrule.NewRepository(database))
	ledgerHandler := commissionledger.NewHandler(commissionledger.NewRepository(database))
	referralHandler := referral.NewHandler(referral.NewService(database))
	customerHandler := customer.NewHandler(database)
	metricsHandler := metrics.NewHandler(database)

	// Router
	r := mux.NewRouter()

	// Influencers
	r.HandleFunc("/influencers", influencerHandler.Create).Methods("POST")
	r.HandleFunc("/influencers", influencerHandler.List).Methods("GET")
	r.HandleFunc("/influencers/{id}", influencerHandler.FindByID).Methods("GET")
	r.HandleFunc("/influencers/{id}", influencerHandler.Update).Methods("PUT")
	r.HandleFunc("/influencers/{id}", influencerHandler.Delete).Methods("DELETE")
	r.HandleFunc("/influencers/{id}/preview", influencerHandler.Preview).Methods("POST")
	r.HandleFunc("/influencers/{id}/summary", metricsHandler.InfluencerSummary).Methods("GET")

	// Commission overrides
	r.HandleFunc("/influencers/{id}/overrides", overrideHandler.Create).Methods("POST")
	r.HandleFunc("/influencers/{id}/overrides", overrideHandler.ListForInfluencer).Methods("GET")
	r.HandleFunc("/overrides/{oid}", overrideHandler.Update).Methods("PUT")
	r.HandleFunc("/overrides/{oid}", overrideHandler.Delete).Methods("DELETE")

	// Commission ledger
	r.HandleFunc("/influencers/{id}/commissions", ledgerHandler.ListEntries).Methods("GET")
	r.HandleFunc("/influencers/{id}/payouts", ledgerHandler.CreatePayout).Methods("POST")
	r.HandleFunc("/influencers/{id}/payouts", ledgerHandler.ListPayouts).Methods("GET")
	r.HandleFunc("/commissions/{id}/cancel", ledgerHandler.CancelEntry).Methods("POST")

	// Referral attribution
	r.HandleFunc("/referrals/click", referralHandler.RecordClick).Methods("POST")
	r.HandleFunc("/referrals/convert", referralHandler.RecordConversion).Methods("POST")

	// Customers and payments
	r.HandleFunc("/customers", customerHandler.Create).Methods("POST")
	r.HandleFunc("/customers", customerHandler.List).Methods("GET")
	r.HandleFunc("/customers/{id}", customerHandler.FindByID).Methods("GET")
	r.HandleFunc("/customers/{id}", customerHandler.Update).Methods("PUT")
	r.HandleFunc("/customers/{id}/project-status", customerHandler.UpdateProjectStatus).Methods("PATCH")
	r.HandleFunc("/customers/{id}/payments", customerHandler.CreatePayment).Methods("POST")
	r.HandleFunc("/customers/{id}/payments", customerHandler.ListPayments).Methods("GET")

	// Metrics
	r.HandleFunc("/metrics", metricsHandler.Global).Methods("GET")
	r.HandleFunc("/metrics/influencers", metricsHandler.PerInfluencer).Methods("GET")

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server listening on :%s", port)
	logger.Fatal("%v", http.ListenAndServe(":"+port, handler))
}
