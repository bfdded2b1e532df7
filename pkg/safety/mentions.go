package safety

import "regexp"

// Mentions are topics detected in the lower-cased message. ASCII
// alternatives match on word boundaries, Chinese ones anywhere.
type Mentions struct {
	OralIsotretinoin     bool
	Retinoid             bool
	TretinoinRx          bool
	Hydroquinone         bool
	BenzoylPeroxide      bool
	StrongSalicylic      bool
	StrongExfoliant      bool
	AHA                  bool
	BHA                  bool
	PHA                  bool
	AggressivePeel       bool
	PhysicalExfoliant    bool
	DailyExfoliation     bool
	WantsExfoliation     bool
	Prescription         bool
	EssentialOilHeavy    bool
	Fragrance            bool
	AcneAsk              bool
	ChestArea            bool
	MultiActivesRequest  bool
	TravelHighUV         bool
	OvernightFast        bool
	SteroidFace          bool
	StrongAntiAging      bool
	BreastfeedingSafeAsk bool
	BarrierCompromised   bool
	SensitiveSkin        bool
}

var (
	reRetinoid = regexp.MustCompile(
		`\b(retinoids?|retinol|retinal|retinaldehyde|tretinoin|adapalene|tazarotene|` +
			`trifarotene|differin|retin-a)\b|维a|a醇|维甲酸|阿达帕林|视黄醇`)
	reTretinoin     = regexp.MustCompile(`\btretinoin\b|维甲酸|阿维a酸`)
	reHydroquinone  = regexp.MustCompile(`\bhydroquinone\b|氢醌`)
	reBPO           = regexp.MustCompile(`\b(benzoyl\s*peroxide|bpo)\b|过氧化苯甲酰`)
	reStrongBHA     = regexp.MustCompile(`salicylic\s*acid\s*(30|20|high|strong)|\bbha\s*peel|高浓度水杨酸|水杨酸焕肤`)
	reAHA           = regexp.MustCompile(`\b(aha|glycolic|lactic|mandelic)\b|果酸|甘醇酸|乳酸`)
	reBHA           = regexp.MustCompile(`\b(bha|salicylic)\b|水杨酸`)
	rePHA           = regexp.MustCompile(`\b(pha|gluconolactone|lactobionic)\b|葡糖酸内酯|乳糖酸`)
	reExfoliant     = regexp.MustCompile(`\b(aha|bha|pha|glycolic|lactic|mandelic|salicylic)\b|果酸|水杨酸|酸类去角质`)
	rePeel          = regexp.MustCompile(`chemical\s*peel|peel\s*kit|\bpeels?\b.{0,12}(at home|strong|tca)|焕肤|刷酸换肤|剥脱`)
	rePhysical      = regexp.MustCompile(`\b(scrubs?|microdermabrasion|exfoliating\s*brush)\b|磨砂|去角质颗粒`)
	reDaily         = regexp.MustCompile(`(every\s*day|daily|天天|每天).{0,12}(acid|exfoliat|刷酸|果酸|水杨酸)`)
	reWantsExfol    = regexp.MustCompile(`exfoliat|\bacids?\b|\bpeel|刷酸|去角质|焕肤`)
	rePrescription  = regexp.MustCompile(`\b(prescription|prescribed|rx)\b|处方|医生开|药膏`)
	reEssentialOil  = regexp.MustCompile(`essential\s*oils?|tea\s*tree\s*oil|香精精油|精油`)
	reFragrance     = regexp.MustCompile(`\b(fragrance|perfumed|parfum)\b|香精|香料`)
	reAcne          = regexp.MustCompile(`\b(acne|breakouts?|pimples?|zits?)\b|控痘|痘痘|闭口|粉刺`)
	reChest         = regexp.MustCompile(`\b(breasts?|chest|areola|nipples?)\b|乳房|胸前|乳晕`)
	reCombine       = regexp.MustCompile(`\b(add|stack|stacking|combine|mix|layer|together)\b|叠加|一起用|同晚`)
	reTravelUV      = regexp.MustCompile(`\b(travel|trip|outdoors?|beach|hiking|skiing|sunny|sun|uv)\b|出差|旅行|户外|海边|暴晒|紫外线`)
	reOvernight     = regexp.MustCompile(`\b(overnight|fastest|quickest)\b|立刻见效|一夜见效|最快见效`)
	reSteroidFace   = regexp.MustCompile(`(steroid|激素).{0,12}(face|脸)`)
	reStrongAging   = regexp.MustCompile(`strong\s*actives?|high\s*strength|\b(retinoids?|hydroquinone)\b|高强度活性|猛药抗老|高浓度`)
	reBFSafeAsk     = regexp.MustCompile(`(breastfeeding|lactating|nursing|哺乳|母乳).{0,20}(safe|ok|okay|可以用|安全)`)
	reBarrierMsg    = regexp.MustCompile(`(damaged|compromised|broken|impaired)\s+(skin\s+)?barrier|barrier\s+(is\s+)?(damaged|compromised|broken|impaired)|屏障(受损|不稳定|破坏)|烂脸`)
	reSensitiveSkin = regexp.MustCompile(`\bsensitive\s+skin\b|敏感肌|皮肤敏感`)
)

// activeGroups are the families counted by MultiActivesRequest.
var activeGroups = []*regexp.Regexp{
	reRetinoid,
	reExfoliant,
	reBPO,
	reHydroquinone,
}

// detectMentions scans a lower-cased, NFKC-normalized message.
func detectMentions(lower string) Mentions {
	// Isotretinoin names contain retinoid fragments such as "维a", so
	// retinoid detection runs on the text without them.
	noIso := reIsotretinoin.ReplaceAllString(lower, " ")

	res := Mentions{
		OralIsotretinoin:     reIsotretinoin.MatchString(lower),
		Retinoid:             reRetinoid.MatchString(noIso),
		TretinoinRx:          reTretinoin.MatchString(noIso),
		Hydroquinone:         reHydroquinone.MatchString(lower),
		BenzoylPeroxide:      reBPO.MatchString(lower),
		StrongSalicylic:      reStrongBHA.MatchString(lower),
		StrongExfoliant:      reExfoliant.MatchString(lower),
		AHA:                  reAHA.MatchString(lower),
		BHA:                  reBHA.MatchString(lower),
		PHA:                  rePHA.MatchString(lower),
		AggressivePeel:       rePeel.MatchString(lower),
		PhysicalExfoliant:    rePhysical.MatchString(lower),
		DailyExfoliation:     reDaily.MatchString(lower),
		WantsExfoliation:     reWantsExfol.MatchString(lower),
		Prescription:         rePrescription.MatchString(lower),
		EssentialOilHeavy:    reEssentialOil.MatchString(lower),
		Fragrance:            reFragrance.MatchString(lower),
		AcneAsk:              reAcne.MatchString(lower),
		ChestArea:            reChest.MatchString(lower),
		TravelHighUV:         reTravelUV.MatchString(lower),
		OvernightFast:        reOvernight.MatchString(lower),
		SteroidFace:          reSteroidFace.MatchString(lower),
		StrongAntiAging:      reStrongAging.MatchString(lower),
		BreastfeedingSafeAsk: reBFSafeAsk.MatchString(lower),
		BarrierCompromised:   reBarrierMsg.MatchString(lower),
		SensitiveSkin:        reSensitiveSkin.MatchString(lower),
	}

	if reCombine.MatchString(lower) {
		var groups int
		for _, re := range activeGroups {
			if re.MatchString(noIso) {
				groups++
			}
		}
		res.MultiActivesRequest = groups >= 2
	}
	return res
}

// conceptIDs derives concept ids from keyword mentions.
func (m Mentions) conceptIDs() []string {
	var res []string
	add := func(ok bool, ids ...string) {
		if ok {
			res = append(res, ids...)
		}
	}
	add(m.Retinoid, "RETINOID")
	add(m.OralIsotretinoin, "ISOTRETINOIN")
	add(m.Hydroquinone, "HYDROQUINONE")
	add(m.BenzoylPeroxide, "BENZOYL_PEROXIDE")
	add(m.AHA, "AHA")
	add(m.BHA, "BHA")
	add(m.PHA, "PHA")
	add(m.StrongSalicylic || m.StrongExfoliant || m.DailyExfoliation, "STRONG_EXFOLIANT")
	add(m.AggressivePeel, "PEEL_AGGRESSIVE")
	add(m.PhysicalExfoliant, "PHYSICAL_EXFOLIANT")
	add(m.EssentialOilHeavy, "ESSENTIAL_OIL")
	add(m.Fragrance, "FRAGRANCE")
	add(m.TravelHighUV, "TRAVEL_HIGH_UV")
	add(m.BarrierCompromised, "BARRIER_COMPROMISED")
	add(m.SensitiveSkin, "SENSITIVE_SKIN")
	add(m.Prescription, "PRESCRIPTION_ACTIVE")
	return res
}
