package catalog

import (
	"sort"
	"strings"
)

// FpxBank is a bank entry in the FPX online-banking directory.
type FpxBank struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	NormalizeName string `json:"normalizeName"`
	BusinessModel string `json:"businessModel"`
	TestOnly      bool   `json:"testOnly"`
	Status        string `json:"status,omitempty"`
}

var fpxBanks = []FpxBank{
	{ID: "TEST0021", Name: "SBI Bank A", DisplayName: "SBI Bank A", NormalizeName: "sbi_bank_a", BusinessModel: "B2C", TestOnly: true},
	{ID: "TEST0022", Name: "SBI Bank B", DisplayName: "SBI Bank B", NormalizeName: "sbi_bank_b", BusinessModel: "B2C", TestOnly: true},
	{ID: "TEST0023", Name: "SBI Bank C", DisplayName: "SBI Bank C", NormalizeName: "sbi_bank_c", BusinessModel: "B2C", TestOnly: true},
	{ID: "ABB0233", Name: "Affin Bank Berhad", DisplayName: "Affin Bank", NormalizeName: "affin_bank", BusinessModel: "B2C"},
	{ID: "ABB0234", Name: "Affin Bank Berhad B2C - Test ID", DisplayName: "Affin B2C - Test ID", NormalizeName: "affin_bank_test", BusinessModel: "B2C", TestOnly: true},
	{ID: "ABMB0212", Name: "Alliance Bank Malaysia Berhad", DisplayName: "Alliance Bank (Personal)", NormalizeName: "alliance_bank", BusinessModel: "B2C", Status: "offline"},
	{ID: "AMBB0209", Name: "AmBank Malaysia Berhad", DisplayName: "AmBank", NormalizeName: "ambank", BusinessModel: "B2C"},
	{ID: "BIMB0340", Name: "Bank Islam Malaysia Berhad", DisplayName: "Bank Islam", NormalizeName: "bank_islam", BusinessModel: "B2C"},
	{ID: "BKRM0602", Name: "Bank Kerjasama Rakyat Malaysia Berhad", DisplayName: "Bank Rakyat", NormalizeName: "bank_rakyat", BusinessModel: "B2C"},
	{ID: "BMMB0341", Name: "Bank Muamalat Malaysia Berhad", DisplayName: "Bank Muamalat", NormalizeName: "bank_muamalat", BusinessModel: "B2C"},
	{ID: "BSN0601", Name: "Bank Simpanan Nasional", DisplayName: "BSN", NormalizeName: "bsn", BusinessModel: "B2C"},
	{ID: "BCBB0235", Name: "CIMB Bank Berhad", DisplayName: "CIMB Clicks", NormalizeName: "cimb", BusinessModel: "B2C"},
	{ID: "HLB0224", Name: "Hong Leong Bank Berhad", DisplayName: "Hong Leong Bank", NormalizeName: "hong_leong_bank", BusinessModel: "B2C"},
	{ID: "HSBC0223", Name: "HSBC Bank Malaysia Berhad", DisplayName: "HSBC Bank", NormalizeName: "hsbc", BusinessModel: "B2C"},
	{ID: "KFH0346", Name: "Kuwait Finance House (Malaysia) Berhad", DisplayName: "KFH", NormalizeName: "kfh", BusinessModel: "B2C"},
	{ID: "MB2U0227", Name: "Malayan Banking Berhad (M2U)", DisplayName: "Maybank2U", NormalizeName: "maybank2u", BusinessModel: "B2C"},
	{ID: "OCBC0229", Name: "OCBC Bank Malaysia Berhad", DisplayName: "OCBC Bank", NormalizeName: "ocbc", BusinessModel: "B2C"},
	{ID: "PBB0233", Name: "Public Bank Berhad", DisplayName: "Public Bank", NormalizeName: "public_bank", BusinessModel: "B2C"},
	{ID: "RHB0218", Name: "RHB Bank Berhad", DisplayName: "RHB Bank", NormalizeName: "rhb", BusinessModel: "B2C"},
	{ID: "SCB0216", Name: "Standard Chartered Bank", DisplayName: "Standard Chartered", NormalizeName: "standard_chartered", BusinessModel: "B2C"},
	{ID: "UOB0226", Name: "United Overseas Bank", DisplayName: "UOB Bank", NormalizeName: "uob", BusinessModel: "B2C"},
	{ID: "UOB0229", Name: "United Overseas Bank - B2C Test", DisplayName: "UOB Bank - Test ID", NormalizeName: "uob_test", BusinessModel: "B2C", TestOnly: true},
}

// Banks returns the FPX bank directory sorted by display name.
func Banks() []FpxBank {
	out := make([]FpxBank, len(fpxBanks))
	copy(out, fpxBanks)
	sort.Slice(out, func(i, j int) bool {
		return strings.ToUpper(out[i].DisplayName) < strings.ToUpper(out[j].DisplayName)
	})
	return out
}

// Bank looks up a bank by its FPX identifier.
func Bank(id string) (FpxBank, bool) {
	for _, b := range fpxBanks {
		if b.ID == id {
			return b, true
		}
	}
	return FpxBank{}, false
}
