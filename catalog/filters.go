package catalog

import (
	"fmt"
	"sort"

	"github.com/use-agent/finspider/models"
)

// Screener filter slug tables. Slugs are what the CLI accepts; codes are
// what the site's screener URL expects.

var exchangeFilters = map[string]string{
	"amex": "exch_amex",
	"cboe": "exch_cboe",
	"nasd": "exch_nasd",
	"nyse": "exch_nyse",
}

var indexFilters = map[string]string{
	"sp500":       "idx_sp500",
	"nasdaq100":   "idx_ndx",
	"djia":        "idx_dji",
	"russell2000": "idx_rut",
}

var sectorFilters = map[string]string{
	"basicmaterials":        "sec_basicmaterials",
	"communicationservices": "sec_communicationservices",
	"consumercyclical":      "sec_consumercyclical",
	"consumerdefensive":     "sec_consumerdefensive",
	"energy":                "sec_energy",
	"financial":             "sec_financial",
	"healthcare":            "sec_healthcare",
	"industrials":           "sec_industrials",
	"realestate":            "sec_realestate",
	"technology":            "sec_technology",
	"utilities":             "sec_utilities",
}

var industrySlugs = map[string]struct{}{
	"stocksonly": {}, "exchangetradedfund": {}, "advertisingagencies": {},
	"aerospacedefense": {}, "agriculturalinputs": {}, "airlines": {},
	"airportsairservices": {}, "aluminum": {}, "apparelmanufacturing": {},
	"apparelretail": {}, "assetmanagement": {}, "automanufacturers": {},
	"autoparts": {}, "autotruckdealerships": {}, "banksdiversified": {},
	"banksregional": {}, "beveragesbrewers": {}, "beveragesnonalcoholic": {},
	"beverageswineriesdistilleries": {}, "biotechnology": {}, "broadcasting": {},
	"buildingmaterials": {}, "buildingproductsequipment": {},
	"businessequipmentsupplies": {}, "capitalmarkets": {}, "chemicals": {},
	"closedendfunddebt": {}, "closedendfundequity": {}, "closedendfundforeign": {},
	"cokingcoal": {}, "communicationequipment": {}, "computerhardware": {},
	"confectioners": {}, "conglomerates": {}, "consultingservices": {},
	"consumerelectronics": {}, "copper": {}, "creditservices": {},
	"departmentstores": {}, "diagnosticsresearch": {}, "discountstores": {},
	"drugmanufacturersgeneral": {}, "drugmanufacturersspecialtygeneric": {},
	"educationtrainingservices": {}, "electricalequipmentparts": {},
	"electroniccomponents": {}, "electronicgamingmultimedia": {},
	"electronicscomputerdistribution": {}, "engineeringconstruction": {},
	"entertainment": {}, "farmheavyconstructionmachinery": {}, "farmproducts": {},
	"financialconglomerates": {}, "financialdatastockexchanges": {},
	"fooddistribution": {}, "footwearaccessories": {},
	"furnishingsfixturesappliances": {}, "gambling": {}, "gold": {},
	"grocerystores": {}, "healthcareplans": {}, "healthinformationservices": {},
	"homeimprovementretail": {}, "householdpersonalproducts": {},
	"industrialdistribution": {}, "informationtechnologyservices": {},
	"infrastructureoperations": {}, "insurancebrokers": {},
	"insurancediversified": {}, "insurancelife": {},
	"insurancepropertycasualty": {}, "insurancereinsurance": {},
	"insurancespecialty": {}, "integratedfreightlogistics": {},
	"internetcontentinformation": {}, "internetretail": {}, "leisure": {},
	"lodging": {}, "lumberwoodproduction": {}, "luxurygoods": {},
	"marineshipping": {}, "medicalcarefacilities": {}, "medicaldevices": {},
	"medicaldistribution": {}, "medicalinstrumentssupplies": {},
	"metalfabrication": {}, "mortgagefinance": {}, "oilgasdrilling": {},
	"oilgasep": {}, "oilgasequipmentservices": {}, "oilgasintegrated": {},
	"oilgasmidstream": {}, "oilgasrefiningmarketing": {},
	"otherindustrialmetalsmining": {}, "otherpreciousmetalsmining": {},
	"packagedfoods": {}, "packagingcontainers": {}, "paperpaperproducts": {},
	"personalservices": {}, "pharmaceuticalretailers": {},
	"pollutiontreatmentcontrols": {}, "publishing": {}, "railroads": {},
	"realestatedevelopment": {}, "realestatediversified": {},
	"realestateservices": {}, "recreationalvehicles": {}, "reitdiversified": {},
	"reithealthcarefacilities": {}, "reithotelmotel": {}, "reitindustrial": {},
	"reitmortgage": {}, "reitoffice": {}, "reitresidential": {},
	"reitretail": {}, "reitspecialty": {}, "rentalleasingservices": {},
	"residentialconstruction": {}, "resortscasinos": {}, "restaurants": {},
	"scientifictechnicalinstruments": {}, "securityprotectionservices": {},
	"semiconductorequipmentmaterials": {}, "semiconductors": {},
	"shellcompanies": {}, "silver": {}, "softwareapplication": {},
	"softwareinfrastructure": {}, "solar": {}, "specialtybusinessservices": {},
	"specialtychemicals": {}, "specialtyindustrialmachinery": {},
	"specialtyretail": {}, "staffingemploymentservices": {}, "steel": {},
	"telecomservices": {}, "textilemanufacturing": {}, "thermalcoal": {},
	"tobacco": {}, "toolsaccessories": {}, "travelservices": {},
	"trucking": {}, "uranium": {}, "utilitiesdiversified": {},
	"utilitiesindependentpowerproducers": {}, "utilitiesregulatedelectric": {},
	"utilitiesregulatedgas": {}, "utilitiesregulatedwater": {},
	"utilitiesrenewable": {}, "wastemanagement": {},
}

var countrySlugs = map[string]struct{}{
	"usa": {}, "notusa": {}, "asia": {}, "europe": {}, "latinamerica": {},
	"bric": {}, "argentina": {}, "australia": {}, "bahamas": {},
	"belgium": {}, "benelux": {}, "bermuda": {}, "brazil": {}, "canada": {},
	"caymanislands": {}, "chile": {}, "china": {}, "chinahongkong": {},
	"colombia": {}, "cyprus": {}, "denmark": {}, "finland": {}, "france": {},
	"germany": {}, "greece": {}, "hongkong": {}, "hungary": {}, "iceland": {},
	"india": {}, "indonesia": {}, "ireland": {}, "israel": {}, "italy": {},
	"japan": {}, "jordan": {}, "kazakhstan": {}, "luxembourg": {},
	"malaysia": {}, "malta": {}, "mexico": {}, "monaco": {},
	"netherlands": {}, "newzealand": {}, "norway": {}, "panama": {},
	"peru": {}, "philippines": {}, "portugal": {}, "russia": {},
	"singapore": {}, "southafrica": {}, "southkorea": {}, "spain": {},
	"sweden": {}, "switzerland": {}, "taiwan": {}, "thailand": {},
	"turkey": {}, "unitedarabemirates": {}, "unitedkingdom": {},
	"uruguay": {}, "vietnam": {},
}

// ScreenerFilters is a set of optional screener pre-filter slugs.
// Empty fields are simply not applied.
type ScreenerFilters struct {
	Exchange string
	Index    string
	Sector   string
	Industry string
	Country  string
}

// Codes translates the slug set into site filter codes. Unknown slugs
// are a configuration error. Slug combination validity is not checked:
// an incompatible combination yields zero results, which the walker
// treats as normal exhaustion.
func (f ScreenerFilters) Codes() ([]string, error) {
	var codes []string
	lookup := func(table map[string]string, slug, flag string) error {
		if slug == "" {
			return nil
		}
		code, ok := table[slug]
		if !ok {
			return models.NewScrapeError(
				models.ErrCodeConfiguration,
				fmt.Sprintf("unknown %s filter %q", flag, slug),
				nil,
			)
		}
		codes = append(codes, code)
		return nil
	}

	if err := lookup(exchangeFilters, f.Exchange, "exchange"); err != nil {
		return nil, err
	}
	if err := lookup(indexFilters, f.Index, "index"); err != nil {
		return nil, err
	}
	if err := lookup(sectorFilters, f.Sector, "sector"); err != nil {
		return nil, err
	}
	if f.Industry != "" {
		if _, ok := industrySlugs[f.Industry]; !ok {
			return nil, models.NewScrapeError(
				models.ErrCodeConfiguration,
				fmt.Sprintf("unknown industry filter %q", f.Industry),
				nil,
			)
		}
		codes = append(codes, "ind_"+f.Industry)
	}
	if f.Country != "" {
		if _, ok := countrySlugs[f.Country]; !ok {
			return nil, models.NewScrapeError(
				models.ErrCodeConfiguration,
				fmt.Sprintf("unknown country filter %q", f.Country),
				nil,
			)
		}
		codes = append(codes, "geo_"+f.Country)
	}
	return codes, nil
}

// Empty reports whether no filter is set.
func (f ScreenerFilters) Empty() bool {
	return f == ScreenerFilters{}
}

// ExchangeSlugs lists the accepted exchange filter slugs, sorted.
func ExchangeSlugs() []string { return sortedKeys(exchangeFilters) }

// IndexSlugs lists the accepted index filter slugs, sorted.
func IndexSlugs() []string { return sortedKeys(indexFilters) }

// SectorSlugs lists the accepted sector filter slugs, sorted.
func SectorSlugs() []string { return sortedKeys(sectorFilters) }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
