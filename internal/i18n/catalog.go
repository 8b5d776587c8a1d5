package i18n

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Key string

const (
	KeyAskName     Key = "ask_name"
	KeyAskPhone    Key = "ask_phone"
	KeyAskBirthday Key = "ask_birthday"
	KeyConsultant  Key = "consultant"
	KeyRate        Key = "rate"
	KeyCity        Key = "city"
	KeyComment     Key = "comment"
	KeyThankYou    Key = "thank_you"
)

const (
	BrandStandard = "standard"
	BrandIposuda  = "iposuda"
)

var (
	ErrMissingTemplate = errors.New("missing template")
	ErrUnknownBrand    = errors.New("unknown brand")
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// Catalog holds the prompt texts of one brand. Welcome and RetryLanguage are
// shown before a language is known, so they are not localized.
type Catalog struct {
	Brand         string
	Welcome       string
	RetryLanguage string
	texts         map[Lang]map[Key]string
}

func NewCatalog(brand string) (*Catalog, error) {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		brand = BrandStandard
	}
	set, ok := brands[brand]
	if !ok {
		return nil, fmt.Errorf("i18n.NewCatalog: %w: %q", ErrUnknownBrand, brand)
	}

	texts := make(map[Lang]map[Key]string, len(set.texts))
	for lang, m := range set.texts {
		cp := make(map[Key]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		texts[lang] = cp
	}

	return &Catalog{
		Brand:         brand,
		Welcome:       set.welcome,
		RetryLanguage: set.retry,
		texts:         texts,
	}, nil
}

// Override replaces one template, e.g. from the YAML config file.
func (c *Catalog) Override(lang Lang, key Key, text string) {
	if c.texts[lang] == nil {
		c.texts[lang] = make(map[Key]string)
	}
	c.texts[lang][key] = text
}

func (c *Catalog) Template(lang Lang, key Key) (string, error) {
	t := c.texts[lang][key]
	if strings.TrimSpace(t) == "" {
		return "", fmt.Errorf("Catalog.Template: %w: lang=%s key=%s", ErrMissingTemplate, lang, key)
	}
	return t, nil
}

// Render fills {placeholders} from values. Placeholders without a value are
// left as literal text.
func (c *Catalog) Render(lang Lang, key Key, values map[string]string) string {
	t, err := c.Template(lang, key)
	if err != nil {
		return ""
	}
	return Fill(t, values)
}

func Fill(template string, values map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := values[name]; ok {
			return v
		}
		return m
	})
}

// Validate checks that every key has a non-empty template for every language.
func (c *Catalog) Validate(langs []Lang, keys []Key) error {
	if strings.TrimSpace(c.Welcome) == "" || strings.TrimSpace(c.RetryLanguage) == "" {
		return fmt.Errorf("Catalog.Validate: %w: language prompt", ErrMissingTemplate)
	}
	var missing []string
	for _, l := range langs {
		for _, k := range keys {
			if _, err := c.Template(l, k); err != nil {
				missing = append(missing, fmt.Sprintf("%s/%s", l, k))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("Catalog.Validate: %w: %s", ErrMissingTemplate, strings.Join(missing, ", "))
	}
	return nil
}

type textSet struct {
	welcome string
	retry   string
	texts   map[Lang]map[Key]string
}

var brands = map[string]textSet{
	BrandStandard: {
		welcome: "🌍 Выберите язык:",
		retry:   "Выберите язык из клавиатуры",
		texts: map[Lang]map[Key]string{
			RU: {
				KeyAskName:     "👋 Как вас зовут?",
				KeyAskPhone:    "📱 Укажите ваш номер телефона (например +7701...):",
				KeyAskBirthday: "🎂 Укажите вашу дату рождения (ДД.ММ.ГГГГ):",
				KeyConsultant:  "👤 {name}, кто вас консультировал?",
				KeyRate:        "⭐ Оцените работу {consultant} от 1 до 10:",
				KeyCity:        "🏙️ Из какого вы города?",
				KeyComment:     "💬 Ваш отзыв:",
				KeyThankYou:    "Спасибо, {name}! Отзыв сохранен. Консультант {consultant} получит уведомление.",
			},
			KZ: {
				KeyAskName:     "👋 Атыңыз кім?",
				KeyAskPhone:    "📱 Телефон нөміріңізді енгізіңіз:",
				KeyAskBirthday: "🎂 Туған күніңіз (КК.АА.ЖЖЖЖ):",
				KeyConsultant:  "👤 {name}, сізге кім көмектесті?",
				KeyRate:        "⭐ {consultant} жұмысын 1-10 аралығында бағалаңыз:",
				KeyCity:        "🏙️ Қай қаладансыз?",
				KeyComment:     "💬 Пікіріңіз:",
				KeyThankYou:    "Рақмет, {name}! {consultant} туралы пікіріңіз сақталды.",
			},
			UZ: {
				KeyAskName:     "👋 Ismingiz nima?",
				KeyAskPhone:    "📱 Telefon raqamingizni kiriting:",
				KeyAskBirthday: "🎂 Tug‘ilgan kuningiz (KK.OY.YYYY):",
				KeyConsultant:  "👤 {name}, kim sizga yordam berdi?",
				KeyRate:        "⭐ {consultant} ishini 1 dan 10 gacha baholang:",
				KeyCity:        "🏙️ Qaysi shahardansiz?",
				KeyComment:     "💬 Fikringiz:",
				KeyThankYou:    "Rahmat, {name}! {consultant} haqidagi fikringiz saqlandi.",
			},
		},
	},
	BrandIposuda: {
		welcome: "🍽️ Добро пожаловать в систему отзывов магазина посуды 'Iposuda'!\n\n🌍 Пожалуйста, выберите язык:",
		retry:   "Пожалуйста, выберите язык из списка.",
		texts: map[Lang]map[Key]string{
			RU: {
				KeyAskName:     "🍽️ Добро пожаловать в наш магазин посуды \"Iposuda\"! Как вас зовут?",
				KeyAskPhone:    "📱 Укажите ваш номер телефона (например: +77012345678):",
				KeyAskBirthday: "🎂 Укажите вашу дату рождения (в формате ДД.ММ.ГГГГ):",
				KeyConsultant:  "👨‍💼 Отлично, {name}! Какой консультант вам помогал?",
				KeyRate:        "⭐ {name}, как бы вы оценили работу консультанта {consultant}? (от 1 до 10)",
				KeyCity:        "🏙️ Из какого вы города?",
				KeyComment:     "💭 Поделитесь вашим мнением о магазине:",
				KeyThankYou:    "🙏 {name}, спасибо за отзыв! Мы передадим консультанту {consultant}.",
			},
			KZ: {
				KeyAskName:     "🍽️ \"Iposuda\" ыдыс дүкеніне қош келдіңіз! Сіздің атыңыз кім?",
				KeyAskPhone:    "📱 Байланыс нөміріңізді жазыңыз (мысалы: +77012345678):",
				KeyAskBirthday: "🎂 Туған күніңізді жазыңыз (КК.АА.ЖЖЖЖ форматында):",
				KeyConsultant:  "👨‍💼 Жақсы, {name}! Қай кеңесші көмектесті?",
				KeyRate:        "⭐ {name}, кеңесші {consultant} жұмысын 1-ден 10-ға дейін бағалаңыз:",
				KeyCity:        "🏙️ Қай қаладансыз?",
				KeyComment:     "💭 Дүкен туралы пікіріңізбен бөлісіңіз:",
				KeyThankYou:    "🙏 {name}, пікіріңізге рахмет! Біз {consultant} туралы мақтау айтамыз.",
			},
			UZ: {
				KeyAskName:     "🍽️ \"Iposuda\" do'koniga xush kelibsiz! Ismingiz nima?",
				KeyAskPhone:    "📱 Telefon raqamingizni yozing (masalan: +998901234567):",
				KeyAskBirthday: "🎂 Tug‘ilgan kuningizni yozing (KK.OY.YYYY formatida):",
				KeyConsultant:  "👨‍💼 Juda yaxshi, {name}! Qaysi konsultant yordam berdi?",
				KeyRate:        "⭐ {name}, konsultant {consultant} ishini 1 dan 10 gacha baholang:",
				KeyCity:        "🏙️ Qaysi shahardansiz?",
				KeyComment:     "💭 Do‘kon haqidagi fikringizni yozing:",
				KeyThankYou:    "🙏 {name}, fikringiz uchun rahmat! {consultant}ga ma'lumot beramiz.",
			},
		},
	},
}
