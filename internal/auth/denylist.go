package auth

// DefaultDenylist содержит словарные и ранее скомпрометированные пароли
// Сравнение регистронезависимое, список настраивается через PolicyConfig
var DefaultDenylist = []string{
	"password",
	"123456",
	"1234567890",
	"qwerty",
	"abc123",
	"111111",
	"123123",
	"admin",
	"welcome",
	"password123",
	"admin123",
	"letmein",
	"monkey",
	"1234567",
	"sunshine",
	"iloveyou",
	"trustno1",
	"princess",
	"123456789",
	"987654321",
	"mypassword",
	"football",
	"000000",
	"qwerty123",
	"dragon",
	"baseball",
	"superman",
	"password1",
	"internet",
	"service",
	"provider",
	"Abc@123456",
	"Password@123",
	"Welcome123!",
	"Qwerty@1234",
	"Admin123456!",
	"P@ssw0rd1234",
	"Abc123456789!",
	"Summer2023!",
	"Winter2023@",
	"Spring2023#",
	"Autumn2023$",
	"Iloveyou123!",
	"Football123@",
	"Baseball123#",
	"America123$",
	"Liverpool123%",
	"Manchester1!",
	"Chelsea123^&",
	"Arsenal123*(",
	"Barcelona12+",
	"January2023!",
	"February23@",
	"March2023#$",
	"April2023%^",
	"December23&",
	"Monday2023!",
	"Friday2023@",
	"Abcdef1234!",
	"Zxcvbn1234@",
	"Asdfgh1234#",
	"P@$$w0rd123",
	"$ecur1tyAbc",
	"Adm1n1str@t",
	"M@nager123!",
	"L0g1n@ccess",
	"C0mp@ny123$",
	"W3lc0me123!",
	"$uper123Man",
	"Tr0ub@dour1",
	"Th1nkp@d123",
	"Qwerty123!@",
	"Company2023!",
	"Passw0rd!23",
	"Security1!2",
	"Abcd1234!@",
	"Test1234!@#",
	"Default123$",
	"Network123!",
	"Internet123@",
}
