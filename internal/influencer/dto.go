package influencer

import (
	"github.com/NovaSiteWorks/api-referral/internal/commissioncalc"
	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
)

type createInfluencerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	YouTube   string `json:"youtube"`

	ReferralCode string `json:"referralCode"`

	CommissionType    string   `json:"commissionType"`
	CommissionRate    float64  `json:"commissionRate"`
	FixedRate         float64  `json:"fixedRate"`
	CalculationMethod string   `json:"calculationMethod"`
	Trigger           string   `json:"trigger"`
	Cap               *float64 `json:"cap"`
	Minimum           *float64 `json:"minimum"`
}

func (req createInfluencerRequest) apply(i *Influencer) {
	i.Name = req.Name
	i.Email = req.Email
	i.Phone = req.Phone
	i.Instagram = req.Instagram
	i.TikTok = req.TikTok
	i.YouTube = req.YouTube
	i.ReferralCode = req.ReferralCode
	i.CommissionType = req.CommissionType
	i.CommissionRate = req.CommissionRate
	i.FixedRate = req.FixedRate
	i.CalculationMethod = req.CalculationMethod
	i.Trigger = req.Trigger
	i.Cap = req.Cap
	i.Minimum = req.Minimum
}

// PreviewRequest asks what a commission would be for a hypothetical
// financial context, without persisting anything.
type PreviewRequest struct {
	CustomerID            *uint   `json:"customerId"`
	ReferralCode          string  `json:"referralCode"`
	ProjectValue          float64 `json:"projectValue"`
	PaymentsReceivedTotal float64 `json:"paymentsReceivedTotal"`
	FirstPaymentAmount    float64 `json:"firstPaymentAmount"`
}

// PreviewResponse carries the resolved rule and the calculation it yields.
type PreviewResponse struct {
	Rule   commissionrule.Rule   `json:"rule"`
	Result commissioncalc.Result `json:"result"`
}
