package respond

import "github.com/navyasetu/varunnetra/internal/i18n"

// Rule IDs of the built-in table, in match order.
const (
	RuleStomach      = "stomach"
	RuleSkin         = "skin"
	RuleHospital     = "hospital"
	RuleHeavyMetal   = "heavy_metal"
	RuleHeadache     = "headache"
	RuleWaterQuality = "water_quality"
	RuleEmergency    = "emergency"
	RuleDefault      = "default"
)

// builtinRules is the canonical health-assistant rule list. Order matters:
// the emergency rule shares vocabulary with earlier rules and only wins when
// none of them match.
func builtinRules() []Rule {
	return []Rule{
		{
			ID:       RuleStomach,
			Keywords: []string{"stomach", "nausea", "पेट", "मतली"},
			Responses: map[i18n.Tag]string{
				i18n.English: "🔍 Symptom Analysis: Stomach pain and nausea could be from waterborne bacteria. Immediate actions: 1) Drink clean water 2) Avoid spicy food 3) Take ORS solution. If no improvement in 24 hours, see a doctor. 📍 Nearest Hospital: Fortis Hospital, Bandra (2.3 km) - Gastroenterology dept available. 🚨 Emergency: 108",
				i18n.Hindi:   "🔍 लक्षण विश्लेषण: पेट दर्द और मतली जल-जनित बैक्टीरिया से हो सकते हैं। तुरंत कार्य: 1) साफ पानी पिएं 2) मसालेदार खाना बंद करें 3) ORS घोल लें। यदि 24 घंटे में सुधार न हो तो डॉक्टर से मिलें। 📍 निकटतम अस्पताल: फोर्टिस हॉस्पिटल, बांद्रा (2.3 km) - गैस्ट्रोएंटेरोलॉजी विभाग उपलब्ध। 🚨 आपातकाल: 108",
			},
		},
		{
			ID:       RuleSkin,
			Keywords: []string{"skin", "rash", "त्वचा", "चकत्ते"},
			Responses: map[i18n.Tag]string{
				i18n.English: "🔍 Image Analysis Suggestion: Skin rashes could indicate heavy metal contamination (arsenic/lead). Symptom check: 1) Itching intensity 2) Rash color 3) Other symptoms (fever/headache). 📷 Please upload clear photos of the rashes. 📍 Specialist: Dr. Sharma (Dermatologist) - Lilavati Hospital (1.8 km)",
				i18n.Hindi:   "🔍 छवि विश्लेषण सुझाव: त्वचा के चकत्ते भारी धातु संदूषण (आर्सेनिक/सीसा) का संकेत हो सकते हैं। लक्षण जांच: 1) खुजली की तीव्रता 2) चकत्तों का रंग 3) अन्य लक्षण (बुखार/सिरदर्द)। 📷 कृपया चकत्तों की स्पष्ट तस्वीर अपलोड करें। 📍 विशेषज्ञ: डॉ. शर्मा (त्वचा विशेषज्ञ) - लीलावती अस्पताल (1.8 km)",
			},
		},
		{
			ID:       RuleHospital,
			Keywords: []string{"hospital", "nearest", "अस्पताल", "निकटतम"},
			Responses: map[i18n.Tag]string{
				i18n.English: "🏥 Nearby Hospitals via Bhuvan API:\n\n1. **Fortis Hospital, Bandra** (2.3 km)\n   📞 022-6767-5000 | Gastro, Neuro, Emergency\n\n2. **Lilavati Hospital** (1.8 km)\n   📞 022-2675-1000 | Dermatology, Internal Medicine\n\n3. **Hinduja Hospital** (3.1 km)\n   📞 022-4510-8888 | Poison Control Center\n\n🚗 Say \"show directions\" for navigation guidance.",
				i18n.Hindi:   "🏥 Bhuvan API से नजदीकी अस्पताल:\n\n1. **फोर्टिस हॉस्पिटल, बांद्रा** (2.3 km)\n   📞 022-6767-5000 | गैस्ट्रो, न्यूरो, आपातकाल\n\n2. **लीलावती अस्पताल** (1.8 km)\n   📞 022-2675-1000 | त्वचा, आंतरिक चिकित्सा\n\n3. **हिंदुजा अस्पताल** (3.1 km)\n   📞 022-4510-8888 | विष नियंत्रण केंद्र\n\n🚗 निर्देश प्राप्त करने के लिए \"दिशा दिखाएं\" कहें।",
			},
		},
		{
			ID:       RuleHeavyMetal,
			Keywords: []string{"heavy metal", "arsenic", "lead", "भारी धातु", "आर्सेनिक"},
			Responses: map[i18n.Tag]string{
				i18n.English: "⚠️ Heavy Metal Poisoning Symptoms:\n\n**Arsenic:** Stomach pain, vomiting, skin changes, numbness in hands/feet\n**Lead:** Headaches, irritability, memory loss, abdominal pain\n**Mercury:** Tremors, behavioral changes, kidney problems\n\n🧪 Immediate Tests: Blood and urine analysis\n📍 Poison Control Helpline: 1066\n🏥 Go to hospital immediately if severe symptoms",
				i18n.Hindi:   "⚠️ भारी धातु विषाक्तता के लक्षण:\n\n**आर्सेनिक:** पेट दर्द, उल्टी, त्वचा में परिवर्तन, हाथ-पैर में सुन्नता\n**सीसा:** सिरदर्द, चिड़चिड़ाहट, मेमोरी लॉस, पेट दर्द\n**मरकरी:** कांपना, व्यवहार में बदलाव, गुर्दे की समस्या\n\n🧪 तुरंत जांच: रक्त और मूत्र परीक्षण\n📍 विष नियंत्रण हेल्पलाइन: 1066\n🏥 तत्काल अस्पताल जाएं यदि गंभीर लक्षण हों",
			},
		},
		{
			ID:       RuleHeadache,
			Keywords: []string{"headache", "fatigue", "सिरदर्द", "थकान"},
			Responses: map[i18n.Tag]string{
				i18n.English: "🔍 Headache and Fatigue Analysis:\n\n**Possible Causes:** Waterborne contamination, heavy metal exposure\n**Checklist:**\n✓ Does water taste metallic?\n✓ How many days symptoms persist?\n✓ Do other family members have issues?\n\n**Immediate Actions:** Drink clean bottled water, rest\n📍 Neurology Check: Jaslok Hospital (2.7 km)\n⚠️ For severe headache, call 108 immediately",
				i18n.Hindi:   "🔍 सिरदर्द और थकान विश्लेषण:\n\n**संभावित कारण:** जल-जनित संदूषण, भारी धातु एक्सपोजर\n**चेकलिस्ट:**\n✓ क्या पानी में धातु का स्वाद है?\n✓ कितने दिन से लक्षण हैं?\n✓ अन्य घर के सदस्यों में भी समस्या?\n\n**तत्काल कार्य:** साफ बोतलबंद पानी पिएं, आराम करें\n📍 न्यूरोलॉजी जांच: जसलोक अस्पताल (2.7 km)\n⚠️ यदि तेज़ सिरदर्द तो तुरंत 108 पर कॉल करें",
			},
		},
		{
			ID:       RuleWaterQuality,
			Keywords: []string{"water quality", "जल गुणवत्ता"},
			Responses: map[i18n.Tag]string{
				i18n.English: "📊 Your Area Water Quality Report:\n\n✅ pH: 7.2 (Normal)\n✅ TDS: 180 mg/L (Good)\n⚠️ Heavy Metal Index: 15 (Low Risk)\n✅ Bacteria: Negative\n\n🏥 If you have water-related health issues, get tested immediately. Would you like to see detailed report?",
				i18n.Hindi:   "📊 आपके क्षेत्र की जल गुणवत्ता रिपोर्ट:\n\n✅ pH: 7.2 (सामान्य)\n✅ TDS: 180 mg/L (अच्छा)\n⚠️ भारी धातु सूचकांक: 15 (कम जोखिम)\n✅ बैक्टीरिया: नकारात्मक\n\n🏥 यदि पानी से संबंधित स्वास्थ्य समस्या हो तो तुरंत जांच कराएं। क्या आप विस्तृत रिपोर्ट देखना चाहते हैं?",
			},
		},
		{
			ID:       RuleEmergency,
			Keywords: []string{"emergency", "urgent", "आपातकाल"},
			Responses: map[i18n.Tag]string{
				i18n.English: "🚨 Emergency Contacts:\n\n🚑 Ambulance: 108\n☠️ Poison Control: 1066\n💧 Water Helpline: 1916\n👨‍⚕️ Doctor on Call: 102\n\n📍 Nearest 24x7 Hospitals:\n- Fortis Bandra (2.3 km)\n- Lilavati (1.8 km)\n\n⚠️ Don't delay for severe symptoms!",
				i18n.Hindi:   "🚨 आपातकालीन संपर्क:\n\n🚑 एम्बुलेंस: 108\n☠️ विष नियंत्रण: 1066\n💧 जल हेल्पलाइन: 1916\n👨‍⚕️ तत्काल डॉक्टर: 102\n\n📍 निकटतम 24x7 अस्पताल:\n- फोर्टिस बांद्रा (2.3 km)\n- लीलावती (1.8 km)\n\n⚠️ गंभीर लक्षणों में देरी न करें!",
			},
		},
	}
}

func builtinFallback() Rule {
	return Rule{
		ID: RuleDefault,
		Responses: map[i18n.Tag]string{
			i18n.English: "👨‍⚕️ I'm your VarunNetra Health Assistant. I can help identify waterborne diseases, analyze symptoms, and locate healthcare services. Please describe your symptoms in detail or upload images. For emergencies, call 108.",
			i18n.Hindi:   "👨‍⚕️ मैं आपका VarunNetra स्वास्थ्य सहायक हूँ। मैं जल-जनित रोगों की पहचान, लक्षण विश्लेषण, और स्वास्थ्य सेवा खोजने में मदद कर सकता हूँ। कृपया अपने लक्षण विस्तार से बताएं या छवि अपलोड करें। आपातकाल में 108 पर कॉल करें।",
		},
	}
}
