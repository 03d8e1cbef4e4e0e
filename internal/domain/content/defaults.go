package content

const placeholderImage = "/placeholder.svg?height=300&width=400"

// DefaultWorkEntries is the built-in list used when the work-entries slot is
// absent or unreadable.
func DefaultWorkEntries() []WorkEntry {
	return []WorkEntry{
		{
			ID:           "1",
			Position:     "Frontend Developer",
			Organization: "PT. TIMEDOOR INDONESIA",
			Period:       "Sep 2024 - Present",
			Responsibilities: []string{
				"Developed responsive web applications using Vue.js and Nuxt.js",
				"Collaborated with backend team for seamless integration",
				"Optimized application performance and user experience",
			},
			Skills: []string{"Vue.js", "Nuxt.js", "JavaScript", "CSS", "Git"},
			Kind:   KindWork,
		},
		{
			ID:           "2",
			Position:     "Cloud Computing Cohort",
			Organization: "Bangkit Academy 2024",
			Period:       "Sep 2024 - Jan 2025",
			Responsibilities: []string{
				"Learned Google Cloud Platform services and architecture",
				"Built scalable cloud applications",
				"Implemented DevOps practices and CI/CD pipelines",
			},
			Skills: []string{"Google Cloud Platform", "Docker", "Kubernetes", "DevOps"},
			Kind:   KindEducation,
		},
	}
}

func DefaultCertificates() []Certificate {
	return []Certificate{
		{
			ID:          "1",
			Title:       "Cloud Computing",
			Issuer:      "Bangkit Academy",
			Date:        "November 2024",
			Link:        "https://drive.google.com/file/d/19kE1J1eWMFKoh1Qz56gv80nTwxu3VvFz/view",
			Description: "Comprehensive cloud computing certification covering GCP services",
		},
		{
			ID:          "2",
			Title:       "Menjadi Google Cloud Engineer",
			Issuer:      "Dicoding",
			Date:        "January 2024",
			Link:        "https://www.dicoding.com/certificates/JMZV4LWRNXN9",
			Description: "Google Cloud Platform engineering fundamentals",
		},
	}
}

func DefaultProjects() []Project {
	return []Project{
		{
			ID:           "1",
			Title:        "Story Time",
			Description:  "Story Time is a platform where users can create, share, and publish their own stories. Built with Nuxt.js, this project focuses on providing a seamless and interactive experience for storytelling enthusiasts.",
			Image:        placeholderImage,
			Link:         "https://github.com/mickeyjiyestha/tailwind-transition",
			Technologies: []string{"Nuxt.js", "Vue.js", "Tailwind CSS", "JavaScript"},
			Featured:     true,
		},
		{
			ID:           "2",
			Title:        "Pizza Landing Page",
			Description:  "A modern and visually appealing landing page designed for a pizza business. The page is crafted to provide an engaging user experience, showcasing the menu, promotions, and easy ordering options.",
			Image:        placeholderImage,
			Link:         "https://github.com/mickeyjiyestha/pizza-vue",
			Technologies: []string{"Vue.js", "CSS", "JavaScript"},
			Featured:     false,
		},
		{
			ID:           "3",
			Title:        "Aetheria E-Commerce",
			Description:  "Developed an e-commerce platform tailored specifically for online shoppers, ensuring seamless product browsing and secure transactions. This platform features a user-friendly interface.",
			Image:        placeholderImage,
			Link:         "https://github.com/mickeyjiyestha/PKL-E-COMMERCE",
			Technologies: []string{"Laravel", "PHP", "MySQL", "Bootstrap"},
			Featured:     true,
		},
		{
			ID:           "4",
			Title:        "Tasty Recipe",
			Description:  "Tasty Recipe is a platform designed for food lovers to explore, share, and save delicious recipes. It offers a seamless browsing experience with a user-friendly interface, making it easy to discover new culinary ideas.",
			Image:        placeholderImage,
			Link:         "https://github.com/mickeyjiyestha/PKL-E-COMMERCE",
			Technologies: []string{"React", "Node.js", "MongoDB"},
			Featured:     false,
		},
		{
			ID:           "5",
			Title:        "Hatarika Shoes",
			Description:  "Hatarika Shoes is an e-commerce platform designed for shoe enthusiasts, offering a seamless shopping experience with easy product browsing and secure transactions. The platform features a clean and intuitive user interface.",
			Image:        placeholderImage,
			Link:         "https://github.com/mickeyjiyestha/PKL-E-COMMERCE",
			Technologies: []string{"Vue.js", "Laravel", "MySQL"},
			Featured:     false,
		},
		{
			ID:           "6",
			Title:        "Tailwind Transition",
			Description:  "In this project, I demonstrated how to create smooth slide-in animations using Tailwind CSS. The main objective was to enhance user experience by adding visually appealing transitions to web elements.",
			Image:        placeholderImage,
			Link:         "https://github.com/mickeyjiyestha/tailwind-transition",
			Technologies: []string{"Tailwind CSS", "JavaScript", "HTML"},
			Featured:     false,
		},
	}
}
