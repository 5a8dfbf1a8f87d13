package waterdata

import "github.com/navyasetu/varunnetra/internal/i18n"

var (
	statusSafe      = text{i18n.English: "Safe", i18n.Hindi: "सुरक्षित"}
	statusNormal    = text{i18n.English: "Normal", i18n.Hindi: "सामान्य"}
	statusGood      = text{i18n.English: "Good", i18n.Hindi: "अच्छा"}
	statusExcellent = text{i18n.English: "Excellent", i18n.Hindi: "उत्कृष्ट"}
	trendImproving  = text{i18n.English: "Improving", i18n.Hindi: "सुधार"}
)

var areaName = text{
	i18n.English: "Mumbai, Maharashtra - Bandra West",
	i18n.Hindi:   "मुंबई, महाराष्ट्र - बांद्रा वेस्ट",
}

var areaParameters = []struct {
	key, value, unit, rng string
	status, description   text
}{
	{
		key: "ph", value: "7.2", rng: "6.5 - 8.5", status: statusNormal,
		description: text{
			i18n.English: "Optimal pH level for drinking water",
			i18n.Hindi:   "पीने के पानी के लिए इष्टतम pH स्तर",
		},
	},
	{
		key: "tds", value: "180", unit: "mg/L", rng: "< 300 mg/L", status: statusGood,
		description: text{
			i18n.English: "Total dissolved solids within acceptable limits",
			i18n.Hindi:   "स्वीकार्य सीमा के भीतर कुल घुलित ठोस पदार्थ",
		},
	},
	{
		key: "turbidity", value: "0.8", unit: "NTU", rng: "< 1 NTU", status: statusExcellent,
		description: text{
			i18n.English: "Water is clear with minimal suspended particles",
			i18n.Hindi:   "न्यूनतम निलंबित कणों के साथ स्पष्ट पानी",
		},
	},
	{
		key: "chlorine", value: "0.3", unit: "mg/L", rng: "0.2 - 0.5 mg/L", status: statusGood,
		description: text{
			i18n.English: "Adequate disinfection level",
			i18n.Hindi:   "पर्याप्त कीटाणुशोधन स्तर",
		},
	},
}

var areaMetals = []struct{ key, value, limit string }{
	{"lead", "0.002", "0.01"},
	{"mercury", "0.0005", "0.001"},
	{"arsenic", "0.003", "0.01"},
	{"cadmium", "0.001", "0.003"},
}

var areaIndices = []struct {
	key    string
	value  int
	status text
}{
	{"wqi", 92, statusExcellent},
	{"hmpi", 15, text{i18n.English: "Low Risk", i18n.Hindi: "कम जोखिम"}},
	{"hei", 8, text{i18n.English: "Minimal Risk", i18n.Hindi: "न्यूनतम जोखिम"}},
}

var areaRecommendations = map[i18n.Tag][]string{
	i18n.English: {
		"Continue regular monitoring of water quality parameters",
		"Maintain proper storage to prevent contamination",
		"Regular cleaning of overhead tanks recommended",
		"Consider water testing every 6 months",
	},
	i18n.Hindi: {
		"जल गुणवत्ता मापदंडों की नियमित निगरानी जारी रखें",
		"संदूषण को रोकने के लिए उचित भंडारण बनाए रखें",
		"ओवरहेड टैंकों की नियमित सफाई की सिफारिश",
		"हर 6 महीने में पानी की जांच पर विचार करें",
	},
}

var monthlySamples = []Sample{
	{"Jan", 78, 7.1, 165, 12},
	{"Feb", 82, 7.3, 158, 10},
	{"Mar", 85, 7.2, 162, 8},
	{"Apr", 89, 7.4, 155, 7},
	{"May", 87, 7.2, 168, 9},
	{"Jun", 91, 7.3, 152, 6},
	{"Jul", 88, 7.1, 159, 8},
	{"Aug", 93, 7.4, 148, 5},
	{"Sep", 90, 7.2, 156, 7},
	{"Oct", 95, 7.3, 145, 4},
	{"Nov", 92, 7.2, 150, 6},
	{"Dec", 94, 7.4, 147, 5},
}

var yearlySamples = []Sample{
	{"2020", 68, 6.9, 195, 25},
	{"2021", 72, 7.0, 188, 22},
	{"2022", 76, 7.1, 180, 18},
	{"2023", 84, 7.2, 165, 12},
	{"2024", 92, 7.3, 155, 8},
}

var pollutionSources = []struct {
	key     string
	name    text
	percent int
	color   string
}{
	{"industrial", text{i18n.English: "Industrial", i18n.Hindi: "औद्योगिक"}, 35, "#ef4444"},
	{"domestic", text{i18n.English: "Domestic", i18n.Hindi: "घरेलू"}, 28, "#f97316"},
	{"agricultural", text{i18n.English: "Agricultural", i18n.Hindi: "कृषि"}, 22, "#eab308"},
	{"natural", text{i18n.English: "Natural", i18n.Hindi: "प्राकृतिक"}, 15, "#22c55e"},
}

var reportInsights = map[i18n.Tag][]string{
	i18n.English: {
		"Water quality has improved by 15% compared to last year",
		"Heavy metal pollution reduced by 22% in industrial areas",
		"pH levels maintained within WHO standards consistently",
		"Bacterial contamination incidents decreased by 30%",
		"TDS levels show seasonal variation patterns",
	},
	i18n.Hindi: {
		"पिछले वर्ष की तुलना में जल गुणवत्ता में 15% सुधार",
		"औद्योगिक क्षेत्रों में भारी धातु प्रदूषण में 22% कमी",
		"pH स्तर लगातार WHO मानकों के भीतर बना रहा",
		"बैक्टीरियल संदूषण घटनाओं में 30% कमी",
		"TDS स्तर मौसमी भिन्नता पैटर्न दिखाते हैं",
	},
}

var reportRecommendations = map[i18n.Tag][]string{
	i18n.English: {
		"Continue regular monitoring of industrial discharge",
		"Implement stricter agricultural runoff controls",
		"Upgrade water treatment facilities in high-risk zones",
		"Increase public awareness about water conservation",
	},
	i18n.Hindi: {
		"औद्योगिक निर्वहन की नियमित निगरानी जारी रखें",
		"कृषि अपवाह नियंत्रण को सख्त बनाएं",
		"उच्च जोखिम वाले क्षेत्रों में जल उपचार सुविधाओं को अपग्रेड करें",
		"जल संरक्षण के बारे में जन जागरूकता बढ़ाएं",
	},
}

var cities = []struct {
	key        string
	name       text
	wqi        int
	zone       Zone
	population string
	region     text
	position   Position
}{
	{
		key: "bhopal", name: text{i18n.English: "Bhopal", i18n.Hindi: "भोपाल"},
		wqi: 75, zone: ZoneModerate, population: "2.4M",
		region:   text{i18n.English: "Central Highlands", i18n.Hindi: "मध्य उच्चभूमि"},
		position: Position{Top: "50%", Left: "43%"},
	},
	{
		key: "patna", name: text{i18n.English: "Patna", i18n.Hindi: "पटना"},
		wqi: 61, zone: ZoneHigh, population: "2.3M",
		region:   text{i18n.English: "Bihar Plains", i18n.Hindi: "बिहार मैदान"},
		position: Position{Top: "42%", Left: "56%"},
	},
	{
		key: "hyderabad", name: text{i18n.English: "Hyderabad", i18n.Hindi: "हैदराबाद"},
		wqi: 82, zone: ZoneSafe, population: "10.3M",
		region:   text{i18n.English: "Deccan Plateau", i18n.Hindi: "दक्कन पठार"},
		position: Position{Top: "65%", Left: "48%"},
	},
}

var zoneDescriptions = map[Zone]text{
	ZoneSafe: {
		i18n.English: "Water quality meets international standards. Safe for all purposes.",
		i18n.Hindi:   "जल गुणवत्ता अंतर्राष्ट्रीय मानकों को पूरा करती है। सभी उद्देश्यों के लिए सुरक्षित।",
	},
	ZoneModerate: {
		i18n.English: "Water quality acceptable but requires monitoring. Basic treatment recommended.",
		i18n.Hindi:   "जल गुणवत्ता स्वीकार्य है लेकिन निगरानी की आवश्यकता है। बुनियादी उपचार की सिफारिश।",
	},
	ZoneHigh: {
		i18n.English: "Water quality poor. Immediate treatment required before consumption.",
		i18n.Hindi:   "जल गुणवत्ता खराब। सेवन से पहले तत्काल उपचार आवश्यक।",
	},
}
