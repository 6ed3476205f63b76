package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ItemRule 以個計價食材的判斷規則（重量單位皆為克）
type ItemRule struct {
	Keyword               string  `mapstructure:"keyword" json:"keyword"`
	PerItemPriceThreshold float64 `mapstructure:"per_item_price_threshold" json:"per_item_price_threshold"`
	PerItemWeight         float64 `mapstructure:"per_item_weight" json:"per_item_weight"`
	PackageWeight         float64 `mapstructure:"package_weight" json:"package_weight"`
}

// PackageSize 常見零售包裝尺寸，Unit 為 g 或 ml
type PackageSize struct {
	Keyword string  `mapstructure:"keyword" json:"keyword"`
	Size    float64 `mapstructure:"size" json:"size"`
	Unit    string  `mapstructure:"unit" json:"unit"`
}

// CategoryPackage 依關鍵字分類的預設包裝尺寸
type CategoryPackage struct {
	Keywords []string `mapstructure:"keywords" json:"keywords"`
	Size     float64  `mapstructure:"size" json:"size"`
	Unit     string   `mapstructure:"unit" json:"unit"`
}

// PriceCap 食材單價上限
type PriceCap struct {
	Keyword  string  `mapstructure:"keyword" json:"keyword"`
	MaxPrice float64 `mapstructure:"max_price" json:"max_price"`
}

// CategoryEstimate 類別預估價格
type CategoryEstimate struct {
	Keyword string  `mapstructure:"keyword" json:"keyword"`
	Price   float64 `mapstructure:"price" json:"price"`
}

// Tables 定價引擎使用的所有靜態資料表
type Tables struct {
	MassUnits         map[string]float64  `mapstructure:"mass_units" json:"mass_units"`
	VolumeUnits       map[string]float64  `mapstructure:"volume_units" json:"volume_units"`
	CountUnits        []string            `mapstructure:"count_units" json:"count_units"`
	CountItems        []string            `mapstructure:"count_items" json:"count_items"`
	ItemWeights       map[string]float64  `mapstructure:"item_weights" json:"item_weights"`
	ItemRules         []ItemRule          `mapstructure:"item_rules" json:"item_rules"`
	PackageSizes      []PackageSize       `mapstructure:"package_sizes" json:"package_sizes"`
	CategoryPackages  []CategoryPackage   `mapstructure:"category_packages" json:"category_packages"`
	PriceCaps         []PriceCap          `mapstructure:"price_caps" json:"price_caps"`
	CategoryEstimates []CategoryEstimate  `mapstructure:"category_estimates" json:"category_estimates"`
	DefaultEstimate   float64             `mapstructure:"default_estimate" json:"default_estimate"`
	KeywordExpansions map[string][]string `mapstructure:"keyword_expansions" json:"keyword_expansions"`
	NonFoodDenylist   []string            `mapstructure:"non_food_denylist" json:"non_food_denylist"`
}

// LoadTables 從 YAML/JSON 檔案載入資料表，未提供的區塊沿用預設值
func LoadTables(path string) (*Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	if err := v.Unmarshal(tables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tables file: %w", err)
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tables file %s: %w", path, err)
	}
	return tables, nil
}

// Validate 檢查重複鍵、衝突關鍵字與非正數值
func (t *Tables) Validate() error {
	var errs []error

	for k, v := range t.MassUnits {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("mass unit %q: non-positive multiplier", k))
		}
		if _, dup := t.VolumeUnits[k]; dup {
			errs = append(errs, fmt.Errorf("unit %q is both mass and volume", k))
		}
		if normalizeUnit(k) != k {
			errs = append(errs, fmt.Errorf("mass unit %q is not normalized", k))
		}
	}
	for k, v := range t.VolumeUnits {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("volume unit %q: non-positive multiplier", k))
		}
		if normalizeUnit(k) != k {
			errs = append(errs, fmt.Errorf("volume unit %q is not normalized", k))
		}
	}
	seen := map[string]bool{}
	for _, u := range t.CountUnits {
		if seen[u] {
			errs = append(errs, fmt.Errorf("count unit %q duplicated", u))
		}
		seen[u] = true
		if _, ok := t.MassUnits[u]; ok {
			errs = append(errs, fmt.Errorf("count unit %q is also a mass unit", u))
		}
		if _, ok := t.VolumeUnits[u]; ok {
			errs = append(errs, fmt.Errorf("count unit %q is also a volume unit", u))
		}
	}

	errs = append(errs, checkKeywords("count item", t.CountItems)...)
	errs = append(errs, checkKeywords("denylist", t.NonFoodDenylist)...)

	for k, w := range t.ItemWeights {
		if w <= 0 {
			errs = append(errs, fmt.Errorf("item weight %q: non-positive weight", k))
		}
	}
	ruleKeys := make([]string, 0, len(t.ItemRules))
	for _, r := range t.ItemRules {
		ruleKeys = append(ruleKeys, r.Keyword)
		if r.PerItemWeight <= 0 || r.PackageWeight <= 0 || r.PerItemPriceThreshold < 0 {
			errs = append(errs, fmt.Errorf("item rule %q: invalid weights or threshold", r.Keyword))
		}
		if _, conflict := t.ItemWeights[r.Keyword]; conflict {
			errs = append(errs, fmt.Errorf("item rule %q conflicts with item weight entry", r.Keyword))
		}
	}
	errs = append(errs, checkKeywords("item rule", ruleKeys)...)

	pkgKeys := make([]string, 0, len(t.PackageSizes))
	for _, p := range t.PackageSizes {
		pkgKeys = append(pkgKeys, p.Keyword)
		if p.Size <= 0 || (p.Unit != UnitGram && p.Unit != UnitMilliliter) {
			errs = append(errs, fmt.Errorf("package size %q: invalid size or unit", p.Keyword))
		}
	}
	errs = append(errs, checkKeywords("package size", pkgKeys)...)

	var catKeys []string
	for _, c := range t.CategoryPackages {
		catKeys = append(catKeys, c.Keywords...)
		if c.Size <= 0 || (c.Unit != UnitGram && c.Unit != UnitMilliliter) {
			errs = append(errs, fmt.Errorf("category package %v: invalid size or unit", c.Keywords))
		}
	}
	errs = append(errs, checkKeywords("category package", catKeys)...)

	capKeys := make([]string, 0, len(t.PriceCaps))
	for _, c := range t.PriceCaps {
		capKeys = append(capKeys, c.Keyword)
		if c.MaxPrice <= 0 {
			errs = append(errs, fmt.Errorf("price cap %q: non-positive cap", c.Keyword))
		}
	}
	errs = append(errs, checkKeywords("price cap", capKeys)...)

	estKeys := make([]string, 0, len(t.CategoryEstimates))
	for _, e := range t.CategoryEstimates {
		estKeys = append(estKeys, e.Keyword)
		if e.Price <= 0 {
			errs = append(errs, fmt.Errorf("category estimate %q: non-positive price", e.Keyword))
		}
	}
	errs = append(errs, checkKeywords("category estimate", estKeys)...)
	if t.DefaultEstimate <= 0 {
		errs = append(errs, errors.New("default estimate must be positive"))
	}

	for family, terms := range t.KeywordExpansions {
		if NormalizeText(family) != family {
			errs = append(errs, fmt.Errorf("expansion family %q is not normalized", family))
		}
		errs = append(errs, checkKeywords("expansion "+family, terms)...)
	}

	return errors.Join(errs...)
}

// checkKeywords 檢查關鍵字已正規化且（以詞幹比較）不重複
func checkKeywords(kind string, keywords []string) []error {
	var errs []error
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		if k == "" || NormalizeText(k) != k {
			errs = append(errs, fmt.Errorf("%s %q is empty or not normalized", kind, k))
			continue
		}
		stem := stemPhrase(k)
		if seen[stem] {
			errs = append(errs, fmt.Errorf("%s %q duplicated", kind, k))
		}
		seen[stem] = true
	}
	return errs
}

// stemPhrase 對每個字詞去除複數字尾，比對兩端時使用同一規則
func stemPhrase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = stemWord(w)
	}
	return strings.Join(words, " ")
}

func stemWord(w string) string {
	if len(w) <= 3 {
		return w
	}
	switch {
	case strings.HasSuffix(w, "oes"):
		return strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "s"), strings.HasSuffix(w, "x"):
		return w[:len(w)-1]
	}
	return w
}

// matchKeyword 回傳 name 中以字詞邊界命中的最長關鍵字
func matchKeyword(name string, keywords []string) (string, bool) {
	stemmed := stemPhrase(name)
	best := ""
	for _, k := range keywords {
		if len(k) <= len(best) {
			continue
		}
		if ContainsPhrase(stemmed, stemPhrase(k)) {
			best = k
		}
	}
	return best, best != ""
}

// DefaultTables 預設資料表（加拿大法語區零售市場）
func DefaultTables() *Tables {
	return &Tables{
		MassUnits: map[string]float64{
			"g": 1, "gr": 1, "gramme": 1, "grammes": 1, "gram": 1, "grams": 1,
			"kg": 1000, "kilo": 1000, "kilos": 1000, "kilogramme": 1000, "kilogrammes": 1000, "kilogram": 1000, "kilograms": 1000,
			"mg": 0.001,
			"lb": 454, "lbs": 454, "livre": 454, "livres": 454, "pound": 454, "pounds": 454,
			"oz": 28.375, "once": 28.375, "onces": 28.375, "ounce": 28.375, "ounces": 28.375,
			"pincee": 0.5, "pincees": 0.5, "pinch": 0.5,
		},
		VolumeUnits: map[string]float64{
			"ml": 1, "millilitre": 1, "millilitres": 1, "milliliter": 1, "milliliters": 1,
			"l": 1000, "litre": 1000, "litres": 1000, "liter": 1000, "liters": 1000,
			"cl": 10, "dl": 100,
			"c a soupe": 15, "c a s": 15, "cas": 15, "cuillere a soupe": 15, "cuilleres a soupe": 15,
			"tbsp": 15, "tablespoon": 15, "tablespoons": 15,
			"c a the": 5, "c a c": 5, "cac": 5, "cuillere a the": 5, "cuilleres a the": 5,
			"tsp": 5, "teaspoon": 5, "teaspoons": 5,
			"tasse": 250, "tasses": 250, "cup": 250, "cups": 250,
			"fl oz": 29.57, "oz liq": 29.57,
		},
		CountUnits: []string{
			"", "u", "unite", "unites", "unit", "units", "piece", "pieces", "pc", "pcs",
			"gousse", "gousses", "clove", "cloves",
			"branche", "branches", "branch", "brin", "brins", "sprig", "sprigs",
			"tranche", "tranches", "slice", "slices",
			"feuille", "feuilles", "leaf", "leaves",
			"botte", "bottes", "bouquet", "bouquets", "bunch",
			"tete", "tetes", "head", "boite", "boites", "can", "cans",
		},
		CountItems: []string{
			"oeuf", "egg", "oignon", "onion", "echalote", "shallot", "ail", "garlic",
			"citron", "lemon", "lime", "orange", "pamplemousse",
			"pomme de terre", "patate", "potato", "carotte", "carrot", "tomate", "tomato",
			"poivron", "bell pepper", "concombre", "cucumber", "avocat", "avocado",
			"courgette", "zucchini", "aubergine", "eggplant", "pomme", "apple", "banane", "banana",
			"celeri", "celery", "laitue", "lettuce", "brocoli", "broccoli", "chou-fleur", "cauliflower",
			"poireau", "leek", "piment", "jalapeno", "champignon", "mushroom",
		},
		ItemRules: []ItemRule{
			{Keyword: "oignon", PerItemPriceThreshold: 1.00, PerItemWeight: 150, PackageWeight: 1360},
			{Keyword: "onion", PerItemPriceThreshold: 1.00, PerItemWeight: 150, PackageWeight: 1360},
			{Keyword: "oeuf", PerItemPriceThreshold: 0.75, PerItemWeight: 50, PackageWeight: 600},
			{Keyword: "egg", PerItemPriceThreshold: 0.75, PerItemWeight: 50, PackageWeight: 600},
			{Keyword: "ail", PerItemPriceThreshold: 0, PerItemWeight: 5, PackageWeight: 150},
			{Keyword: "garlic", PerItemPriceThreshold: 0, PerItemWeight: 5, PackageWeight: 150},
			{Keyword: "carotte", PerItemPriceThreshold: 0.50, PerItemWeight: 70, PackageWeight: 907},
			{Keyword: "carrot", PerItemPriceThreshold: 0.50, PerItemWeight: 70, PackageWeight: 907},
			{Keyword: "citron", PerItemPriceThreshold: 1.25, PerItemWeight: 100, PackageWeight: 680},
			{Keyword: "lemon", PerItemPriceThreshold: 1.25, PerItemWeight: 100, PackageWeight: 680},
			{Keyword: "lime", PerItemPriceThreshold: 0.75, PerItemWeight: 65, PackageWeight: 454},
			{Keyword: "orange", PerItemPriceThreshold: 1.50, PerItemWeight: 150, PackageWeight: 1360},
			{Keyword: "pomme de terre", PerItemPriceThreshold: 0.80, PerItemWeight: 200, PackageWeight: 2270},
			{Keyword: "potato", PerItemPriceThreshold: 0.80, PerItemWeight: 200, PackageWeight: 2270},
			{Keyword: "tomate", PerItemPriceThreshold: 1.00, PerItemWeight: 120, PackageWeight: 680},
			{Keyword: "tomato", PerItemPriceThreshold: 1.00, PerItemWeight: 120, PackageWeight: 680},
			{Keyword: "poivron", PerItemPriceThreshold: 2.00, PerItemWeight: 160, PackageWeight: 680},
			{Keyword: "bell pepper", PerItemPriceThreshold: 2.00, PerItemWeight: 160, PackageWeight: 680},
			{Keyword: "concombre", PerItemPriceThreshold: 2.50, PerItemWeight: 300, PackageWeight: 900},
			{Keyword: "avocat", PerItemPriceThreshold: 2.50, PerItemWeight: 170, PackageWeight: 850},
			{Keyword: "echalote", PerItemPriceThreshold: 0.75, PerItemWeight: 30, PackageWeight: 454},
			{Keyword: "courgette", PerItemPriceThreshold: 1.50, PerItemWeight: 200, PackageWeight: 907},
			{Keyword: "banane", PerItemPriceThreshold: 0.50, PerItemWeight: 120, PackageWeight: 1000},
			{Keyword: "pomme", PerItemPriceThreshold: 1.25, PerItemWeight: 180, PackageWeight: 1360},
		},
		ItemWeights: map[string]float64{
			"persil": 15, "parsley": 15, "coriandre": 15, "cilantro": 15,
			"basilic": 10, "basil": 10, "menthe": 10, "mint": 10, "aneth": 10, "ciboulette": 10,
			"thym": 2, "thyme": 2, "romarin": 2, "rosemary": 2,
			"laurier": 0.2, "bay leaf": 0.2,
			"celeri": 40, "celery": 40, "laitue": 500, "lettuce": 500,
			"brocoli": 350, "broccoli": 350, "chou-fleur": 600, "cauliflower": 600, "chou": 900,
			"aubergine": 300, "eggplant": 300, "poireau": 200, "leek": 200,
			"champignon": 20, "mushroom": 20, "piment": 15, "jalapeno": 15,
			"patate douce": 250, "sweet potato": 250, "mangue": 300, "ananas": 1500,
			"tranche de pain": 30, "tranche de bacon": 20, "tranche de fromage": 20,
			"cucumber": 300, "avocado": 170, "zucchini": 200, "shallot": 30, "banana": 120, "apple": 180,
		},
		PackageSizes: []PackageSize{
			{Keyword: "huile", Size: 750, Unit: UnitMilliliter},
			{Keyword: "huile d olive", Size: 1000, Unit: UnitMilliliter},
			{Keyword: "oil", Size: 750, Unit: UnitMilliliter},
			{Keyword: "farine", Size: 2500, Unit: UnitGram},
			{Keyword: "flour", Size: 2500, Unit: UnitGram},
			{Keyword: "beurre", Size: 454, Unit: UnitGram},
			{Keyword: "butter", Size: 454, Unit: UnitGram},
			{Keyword: "sucre", Size: 2000, Unit: UnitGram},
			{Keyword: "sugar", Size: 2000, Unit: UnitGram},
			{Keyword: "cassonade", Size: 1000, Unit: UnitGram},
			{Keyword: "sel", Size: 1000, Unit: UnitGram},
			{Keyword: "salt", Size: 1000, Unit: UnitGram},
			{Keyword: "poivre", Size: 100, Unit: UnitGram},
			{Keyword: "lait", Size: 2000, Unit: UnitMilliliter},
			{Keyword: "milk", Size: 2000, Unit: UnitMilliliter},
			{Keyword: "lait de coco", Size: 400, Unit: UnitMilliliter},
			{Keyword: "creme", Size: 473, Unit: UnitMilliliter},
			{Keyword: "cream", Size: 473, Unit: UnitMilliliter},
			{Keyword: "creme sure", Size: 500, Unit: UnitMilliliter},
			{Keyword: "yogourt", Size: 650, Unit: UnitGram},
			{Keyword: "riz", Size: 2000, Unit: UnitGram},
			{Keyword: "rice", Size: 2000, Unit: UnitGram},
			{Keyword: "pate", Size: 900, Unit: UnitGram},
			{Keyword: "pasta", Size: 900, Unit: UnitGram},
			{Keyword: "spaghetti", Size: 900, Unit: UnitGram},
			{Keyword: "bouillon", Size: 900, Unit: UnitMilliliter},
			{Keyword: "broth", Size: 900, Unit: UnitMilliliter},
			{Keyword: "sauce tomate", Size: 680, Unit: UnitMilliliter},
			{Keyword: "tomates en des", Size: 796, Unit: UnitMilliliter},
			{Keyword: "mais en creme", Size: 398, Unit: UnitMilliliter},
			{Keyword: "creamed corn", Size: 398, Unit: UnitMilliliter},
			{Keyword: "vinaigre", Size: 1000, Unit: UnitMilliliter},
			{Keyword: "miel", Size: 500, Unit: UnitGram},
			{Keyword: "sirop d erable", Size: 540, Unit: UnitMilliliter},
			{Keyword: "moutarde", Size: 375, Unit: UnitMilliliter},
			{Keyword: "ketchup", Size: 1000, Unit: UnitMilliliter},
			{Keyword: "mayonnaise", Size: 890, Unit: UnitMilliliter},
			{Keyword: "parmesan", Size: 250, Unit: UnitGram},
			{Keyword: "mozzarella", Size: 340, Unit: UnitGram},
			{Keyword: "chapelure", Size: 425, Unit: UnitGram},
			{Keyword: "flocons d avoine", Size: 1000, Unit: UnitGram},
			{Keyword: "poudre a pate", Size: 450, Unit: UnitGram},
			{Keyword: "cacao", Size: 250, Unit: UnitGram},
			{Keyword: "chocolat", Size: 200, Unit: UnitGram},
			{Keyword: "amande", Size: 200, Unit: UnitGram},
		},
		CategoryPackages: []CategoryPackage{
			{Keywords: []string{"viande", "boeuf", "porc", "poulet", "veau", "agneau", "dinde", "saucisse", "jambon", "meat", "beef", "pork", "chicken", "turkey", "lamb", "veal", "sausage", "ham"}, Size: 1000, Unit: UnitGram},
			{Keywords: []string{"poisson", "saumon", "thon", "morue", "tilapia", "crevette", "fish", "salmon", "tuna", "cod", "shrimp"}, Size: 500, Unit: UnitGram},
			{Keywords: []string{"fromage", "cheddar", "cheese"}, Size: 400, Unit: UnitGram},
		},
		PriceCaps: []PriceCap{
			{Keyword: "sel", MaxPrice: 10}, {Keyword: "salt", MaxPrice: 10},
			{Keyword: "sucre", MaxPrice: 10}, {Keyword: "sugar", MaxPrice: 10},
			{Keyword: "farine", MaxPrice: 10}, {Keyword: "flour", MaxPrice: 10},
			{Keyword: "riz", MaxPrice: 15}, {Keyword: "rice", MaxPrice: 15},
			{Keyword: "pate", MaxPrice: 15}, {Keyword: "pasta", MaxPrice: 15},
			{Keyword: "oignon", MaxPrice: 10}, {Keyword: "onion", MaxPrice: 10},
			{Keyword: "ail", MaxPrice: 40}, {Keyword: "garlic", MaxPrice: 40},
			{Keyword: "pomme de terre", MaxPrice: 8}, {Keyword: "potato", MaxPrice: 8},
			{Keyword: "carotte", MaxPrice: 8}, {Keyword: "carrot", MaxPrice: 8},
			{Keyword: "mais", MaxPrice: 10}, {Keyword: "corn", MaxPrice: 10},
			{Keyword: "lait", MaxPrice: 10}, {Keyword: "milk", MaxPrice: 10},
			{Keyword: "oeuf", MaxPrice: 15}, {Keyword: "egg", MaxPrice: 15},
			{Keyword: "beurre", MaxPrice: 25}, {Keyword: "butter", MaxPrice: 25},
			{Keyword: "boeuf", MaxPrice: 45}, {Keyword: "beef", MaxPrice: 45},
			{Keyword: "porc", MaxPrice: 30}, {Keyword: "pork", MaxPrice: 30},
			{Keyword: "poulet", MaxPrice: 35}, {Keyword: "chicken", MaxPrice: 35},
			{Keyword: "poisson", MaxPrice: 60}, {Keyword: "fish", MaxPrice: 60},
			{Keyword: "saumon", MaxPrice: 60}, {Keyword: "salmon", MaxPrice: 60},
			{Keyword: "crevette", MaxPrice: 70}, {Keyword: "shrimp", MaxPrice: 70},
			{Keyword: "fromage", MaxPrice: 60}, {Keyword: "cheese", MaxPrice: 60},
			{Keyword: "parmesan", MaxPrice: 80},
			{Keyword: "huile", MaxPrice: 40}, {Keyword: "oil", MaxPrice: 40},
			{Keyword: "huile d olive", MaxPrice: 50},
			{Keyword: "epice", MaxPrice: 150}, {Keyword: "spice", MaxPrice: 150},
			{Keyword: "vanille", MaxPrice: 1000}, {Keyword: "vanilla", MaxPrice: 1000},
			{Keyword: "basilic", MaxPrice: 150}, {Keyword: "persil", MaxPrice: 80},
			{Keyword: "cafe", MaxPrice: 60}, {Keyword: "coffee", MaxPrice: 60},
			{Keyword: "chocolat", MaxPrice: 50}, {Keyword: "noix", MaxPrice: 60},
		},
		CategoryEstimates: []CategoryEstimate{
			{Keyword: "viande", Price: 8.99}, {Keyword: "meat", Price: 8.99},
			{Keyword: "poisson", Price: 11.99}, {Keyword: "fruits de mer", Price: 11.99}, {Keyword: "seafood", Price: 11.99},
			{Keyword: "produits laitiers", Price: 4.99}, {Keyword: "laitier", Price: 4.99}, {Keyword: "dairy", Price: 4.99},
			{Keyword: "fruits et legumes", Price: 2.99}, {Keyword: "legume", Price: 2.99}, {Keyword: "fruit", Price: 2.99},
			{Keyword: "produce", Price: 2.99}, {Keyword: "vegetable", Price: 2.99},
			{Keyword: "boulangerie", Price: 3.49}, {Keyword: "bakery", Price: 3.49},
			{Keyword: "epicerie", Price: 3.49}, {Keyword: "pantry", Price: 3.49},
			{Keyword: "epice", Price: 3.99}, {Keyword: "spice", Price: 3.99},
		},
		DefaultEstimate: 3.99,
		KeywordExpansions: map[string][]string{
			"poulet":         {"volaille", "poitrine de poulet", "cuisse de poulet", "haut de cuisse", "chicken"},
			"boeuf":          {"boeuf hache", "bavette", "surlonge", "contre-filet", "beef"},
			"porc":           {"longe de porc", "cotelette de porc", "filet de porc", "pork"},
			"pomme de terre": {"patate", "potato"},
			"tomate":         {"tomato"},
			"fromage":        {"cheddar", "mozzarella", "cheese"},
			"lait":           {"milk"},
			"oignon":         {"onion", "oignon jaune"},
			"ail":            {"garlic"},
			"mais":           {"corn"},
			"creme":          {"cream"},
			"ground beef":    {"boeuf hache", "lean ground beef", "extra lean ground beef"},
			"potato":         {"pomme de terre", "patate", "russet"},
			"creamed corn":   {"mais en creme", "cream style corn"},
		},
		NonFoodDenylist: []string{
			"couche", "lingette", "papier hygienique", "essuie-tout", "detergent", "savon", "shampooing",
			"nettoyant", "eau de javel", "multivitamine", "supplement", "gelule",
			"piles alcalines", "batterie", "chargeur", "ecouteur", "televiseur", "meuble", "chaise", "jouet",
			"pour chien", "pour chat", "litiere",
			"diaper", "wipe", "toilet paper", "paper towel", "soap", "shampoo", "cleaner", "bleach",
			"vitamin", "battery", "charger", "headphone", "furniture", "toy", "dog food", "cat food", "litter",
		},
	}
}
